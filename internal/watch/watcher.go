// Package watch ingests supported documents dropped into a directory.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/quillon/docuchat/internal/core/domain"
	"github.com/quillon/docuchat/internal/core/ports/driving"
	"github.com/quillon/docuchat/internal/logger"
)

// defaultDebounceDelay batches rapid write events for the same file.
const defaultDebounceDelay = 200 * time.Millisecond

// Options configures the watcher.
type Options struct {
	// Department is attached to every auto-ingested document.
	Department string

	// Tags are attached to every auto-ingested document.
	Tags []string

	// Debounce overrides the per-file debounce delay. Zero uses the default.
	Debounce time.Duration
}

// Watcher ingests files created or modified in a watched directory.
// Only files with a supported extension are picked up; everything else
// is ignored.
type Watcher struct {
	dir    string
	ingest driving.IngestService
	opts   Options

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// New creates a watcher for the given directory.
func New(dir string, ingest driving.IngestService, opts Options) (*Watcher, error) {
	if dir == "" {
		return nil, fmt.Errorf("watch directory is required")
	}
	if ingest == nil {
		return nil, fmt.Errorf("ingest service is required")
	}
	if opts.Debounce <= 0 {
		opts.Debounce = defaultDebounceDelay
	}

	return &Watcher{
		dir:    dir,
		ingest: ingest,
		opts:   opts,
		timers: make(map[string]*time.Timer),
	}, nil
}

// Run watches the directory until the context is cancelled. Files already
// present at startup are ingested first.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	if err := w.ingestExisting(ctx); err != nil {
		return err
	}

	logger.Info("watching %s for documents", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !supported(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)
		}
	}
}

// ingestExisting picks up supported files already in the directory.
func (w *Watcher) ingestExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", w.dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if !supported(path) {
			continue
		}
		w.ingestFile(ctx, path)
	}
	return nil
}

// schedule debounces ingestion of a file, resetting the timer on each event.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.timers[path]; ok {
		timer.Stop()
	}
	w.timers[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		w.ingestFile(ctx, path)
	})
}

// stopTimers cancels all pending debounce timers.
func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
}

// ingestFile reads and ingests one file, logging failures without stopping
// the watch loop.
func (w *Watcher) ingestFile(ctx context.Context, path string) {
	content, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("reading %s: %v", path, err)
		return
	}

	fileName := filepath.Base(path)
	stored, err := w.ingest.Ingest(ctx, driving.IngestRequest{
		FileName:   fileName,
		Content:    content,
		Department: w.opts.Department,
		Tags:       w.opts.Tags,
	})
	if err != nil {
		logger.Warn("ingesting %s: %v", fileName, err)
		return
	}

	logger.Info("ingested %s (%d chunks)", fileName, stored)
}

// supported reports whether the file extension maps to a known format.
func supported(path string) bool {
	_, err := domain.FileTypeForName(filepath.Base(path))
	return err == nil
}
