// Package watch rebuilds continuously: a filesystem watcher triggers
// debounced rebuilds on content changes, and an optional scheduler forces a
// periodic full rebuild as a safety net for missed events.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/coursebuilder/internal/build"
	"git.home.luguber.info/inful/coursebuilder/internal/logfields"
	"git.home.luguber.info/inful/coursebuilder/internal/metrics"
)

// Options configures a watch session.
type Options struct {
	Build       build.Options
	Interval    time.Duration // periodic full rebuild; 0 disables the scheduler
	Debounce    time.Duration // quiet period after the last event; default 2s
	MetricsAddr string        // serve /metrics here when non-empty
	Metrics     *metrics.PrometheusRecorder

	// AfterBuild runs after every completed rebuild.
	AfterBuild func(*build.Result)
}

// Watcher owns the filesystem watcher, the scheduler and the rebuild loop of
// one watch session.
type Watcher struct {
	opts      Options
	watcher   *fsnotify.Watcher
	scheduler gocron.Scheduler
	rebuildCh chan struct{}

	mu       sync.Mutex
	building bool
}

// New creates a watcher over the build's content root.
func New(opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = 2 * time.Second
	}
	if opts.Metrics != nil {
		opts.Build.Recorder = opts.Metrics
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	w := &Watcher{
		opts:      opts,
		watcher:   fsw,
		rebuildCh: make(chan struct{}, 1),
	}
	if opts.Interval > 0 {
		scheduler, err := gocron.NewScheduler()
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("create scheduler: %w", err)
		}
		if _, err := scheduler.NewJob(
			gocron.DurationJob(opts.Interval),
			gocron.NewTask(w.trigger),
			gocron.WithName("periodic-rebuild"),
		); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("schedule periodic rebuild: %w", err)
		}
		w.scheduler = scheduler
	}
	return w, nil
}

// Run performs an initial build, then blocks rebuilding on changes until ctx
// is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.addRecursive(w.opts.Build.ContentRoot); err != nil {
		return err
	}
	slog.Info("Watching content root", logfields.Path(w.opts.Build.ContentRoot))

	if w.scheduler != nil {
		w.scheduler.Start()
		defer func() {
			if err := w.scheduler.Shutdown(); err != nil {
				slog.Error("Failed to stop scheduler", logfields.Error(err))
			}
		}()
	}
	if w.opts.MetricsAddr != "" && w.opts.Metrics != nil {
		go w.serveMetrics(ctx)
	}

	w.rebuild(ctx)

	go w.eventLoop(ctx)

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.rebuildCh:
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.opts.Debounce, func() {
				w.rebuild(ctx)
			})
		}
	}
}

// eventLoop forwards filesystem events into the debounced rebuild trigger and
// keeps the recursive watch up to date as directories appear.
func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						slog.Warn("Failed to watch new directory",
							logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				slog.Debug("Content change detected", logfields.Path(event.Name))
				w.trigger()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

// trigger requests a rebuild; a pending request absorbs further triggers.
func (w *Watcher) trigger() {
	select {
	case w.rebuildCh <- struct{}{}:
	default:
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	w.mu.Lock()
	if w.building {
		w.mu.Unlock()
		w.trigger()
		return
	}
	w.building = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.building = false
		w.mu.Unlock()
	}()

	started := time.Now()
	result, err := build.Run(ctx, w.opts.Build)
	switch {
	case err != nil:
		slog.Error("Rebuild failed", logfields.Error(err))
	case result.Diagnostics.HasErrors():
		slog.Warn("Rebuild has validation errors, keeping previous output",
			slog.Int("errors", result.Diagnostics.ErrorCount()),
			logfields.DurationMS(float64(time.Since(started).Milliseconds())))
	default:
		slog.Info("Rebuild complete",
			logfields.BuildID(result.Manifest.ID),
			logfields.Hash(result.Manifest.ContentHash),
			logfields.DurationMS(float64(time.Since(started).Milliseconds())))
	}
	if w.opts.AfterBuild != nil && result != nil {
		w.opts.AfterBuild(result)
	}
}

// addRecursive watches root and every directory below it.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", w.opts.Metrics.Handler())
	server := &http.Server{Addr: w.opts.MetricsAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	slog.Info("Serving metrics", slog.String("addr", w.opts.MetricsAddr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Metrics server failed", logfields.Error(err))
	}
}
