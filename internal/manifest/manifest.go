// Package manifest defines the aggregate build artifact consumed by the
// rendering layer, and its content-addressed hash.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/coursebuilder/internal/content"
	"git.home.luguber.info/inful/coursebuilder/internal/relations"
	"git.home.luguber.info/inful/coursebuilder/internal/routes"
)

// Manifest is the final aggregate of one build invocation. Created once,
// never mutated, replaces the previous build output wholesale.
type Manifest struct {
	ID          string                      `json:"id"`
	GeneratedAt time.Time                   `json:"generatedAt"`
	Locales     []string                    `json:"locales"`
	Inputs      []SourceInput               `json:"inputs"`
	Routes      map[string]routes.Kind      `json:"routes"`
	Subjects    map[string]*SubjectEntry    `json:"subjects"`
	Instructors map[string]*InstructorEntry `json:"instructors"`
	System      map[string]*SystemEntry     `json:"system"`
	ContentHash string                      `json:"contentHash"`
}

// SourceInput records one content source directory and, when the source is a
// git checkout, its HEAD commit for provenance.
type SourceInput struct {
	Path   string `json:"path"`
	Kind   string `json:"kind"`
	Commit string `json:"commit,omitempty"`
}

// ArticleInfo is the manifest's view of one article across locales.
type ArticleInfo struct {
	Slug     string            `json:"slug"`
	Locales  []string          `json:"locales"` // locales with compiled content, sorted
	Titles   map[string]string `json:"titles"`  // locale → title
	Digests  map[string]string `json:"digests"` // locale → compiled content digest
	Category string            `json:"category,omitempty"`
}

// CategoryEntry is one resolved ToC category of a subject.
type CategoryEntry struct {
	Name     string   `json:"name"`
	Articles []string `json:"articles"`
}

// SubjectEntry is the manifest's denormalized view of one subject.
type SubjectEntry struct {
	Slug         string                    `json:"slug"`
	Title        content.LocalizedString   `json:"title"`
	Description  content.LocalizedString   `json:"description"`
	Difficulty   string                    `json:"difficulty,omitempty"`
	Instructors  []relations.InstructorRef `json:"instructors"`
	Categories   []CategoryEntry           `json:"categories,omitempty"`
	Articles     map[string]*ArticleInfo   `json:"articles"`
	FrontLocales []string                  `json:"frontLocales,omitempty"`
	FrontDigests map[string]string         `json:"frontDigests,omitempty"`
}

// InstructorEntry is the manifest's denormalized view of one instructor.
type InstructorEntry struct {
	Slug         string                  `json:"slug"`
	Name         string                  `json:"name"`
	Title        content.LocalizedString `json:"title"`
	Bio          content.LocalizedString `json:"bio"`
	Website      string                  `json:"website,omitempty"`
	Subjects     []relations.SubjectRef  `json:"subjects"`
	Articles     map[string]*ArticleInfo `json:"articles"`
	FrontLocales []string                `json:"frontLocales,omitempty"`
	FrontDigests map[string]string       `json:"frontDigests,omitempty"`
}

// SystemEntry is the manifest's view of one system article set.
type SystemEntry struct {
	Slug         string                  `json:"slug"`
	Title        content.LocalizedString `json:"title"`
	Description  content.LocalizedString `json:"description"`
	Articles     map[string]*ArticleInfo `json:"articles"`
	FrontLocales []string                `json:"frontLocales,omitempty"`
	FrontDigests map[string]string       `json:"frontDigests,omitempty"`
}

// New creates an empty manifest with a fresh build id and timestamp.
func New(localeCodes []string) *Manifest {
	return &Manifest{
		ID:          uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Locales:     localeCodes,
		Routes:      make(map[string]routes.Kind),
		Subjects:    make(map[string]*SubjectEntry),
		Instructors: make(map[string]*InstructorEntry),
		System:      make(map[string]*SystemEntry),
	}
}

// ComputeHash returns the sha256 hash of the manifest content, excluding the
// build id, timestamp, the hash field itself, and the input provenance: the
// hash is a pure function of compiled content and configuration, so two
// builds of identical content hash identically regardless of wall-clock time
// or which commit happened to deliver the content. Compiled document bodies
// and searchable frontmatter enter through the per-article Digests and the
// entity FrontDigests, so any edit that changes an output artifact shifts
// the hash.
//
// encoding/json serializes map keys in sorted order, which makes the
// canonical form stable across runs and machines.
func (m *Manifest) ComputeHash() (string, error) {
	hashInput := struct {
		Locales     []string                    `json:"locales"`
		Routes      map[string]routes.Kind      `json:"routes"`
		Subjects    map[string]*SubjectEntry    `json:"subjects"`
		Instructors map[string]*InstructorEntry `json:"instructors"`
		System      map[string]*SystemEntry     `json:"system"`
	}{
		Locales:     m.Locales,
		Routes:      m.Routes,
		Subjects:    m.Subjects,
		Instructors: m.Instructors,
		System:      m.System,
	}

	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}
	return fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// ToJSON serializes the manifest to indented JSON.
func (m *Manifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}
