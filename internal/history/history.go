// Package history persists a record of past builds so the orchestrator can
// tell an operator when a rebuild produced an unchanged content hash.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one completed build.
type Record struct {
	BuildID     string
	ContentHash string
	Status      string // success | failed
	DurationMS  int64
	CreatedAt   time.Time
}

// Store is a SQLite-backed build history.
// Use ":memory:" for an in-memory database, or a file path for persistence.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		status TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_created_at ON builds(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Append records one completed build.
func (s *Store) Append(ctx context.Context, rec Record) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (build_id, content_hash, status, duration_ms, created_at) VALUES (?, ?, ?, ?, ?)",
		rec.BuildID, rec.ContentHash, rec.Status, rec.DurationMS, createdAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Latest returns the most recent build record, or ok=false when the history
// is empty.
func (s *Store) Latest(ctx context.Context) (Record, bool, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT build_id, content_hash, status, duration_ms, created_at FROM builds ORDER BY id DESC LIMIT 1")

	var rec Record
	var createdAt int64
	err := row.Scan(&rec.BuildID, &rec.ContentHash, &rec.Status, &rec.DurationMS, &createdAt)
	if err == sql.ErrNoRows {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("query latest build: %w", err)
	}
	rec.CreatedAt = time.Unix(createdAt, 0)
	return rec, true, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
