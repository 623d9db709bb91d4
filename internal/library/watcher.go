package library

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/calliope-music/calliope/internal/constants"
	"github.com/calliope-music/calliope/internal/logger"
	"github.com/calliope-music/calliope/internal/metadata"
	"github.com/calliope-music/calliope/internal/store"
)

// Watcher keeps the catalog in sync with the music tree after the initial
// scan. Created files are ingested after a short settle delay so half-copied
// files are not parsed mid-write, and a slow periodic rescan picks up
// anything the notifications missed. Both paths are idempotent.
type Watcher struct {
	root    string
	scanner *Scanner
	store   *store.Store
	log     *logger.Logger
}

// NewWatcher builds a watcher over the same root as the scanner.
func NewWatcher(root string, scanner *Scanner, st *store.Store, log *logger.Logger) *Watcher {
	return &Watcher{
		root:    root,
		scanner: scanner,
		store:   st,
		log:     log.WithComponent("watcher"),
	}
}

// Run blocks until ctx is done, ingesting files as they appear.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := watchTree(fw, w.root); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}

	// Capacity 1: the event loop hands one path at a time to the ingester and
	// blocks if it is busy, which naturally throttles bursty copies.
	paths := make(chan string, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.ingestLoop(ctx, paths)
	}()

	ticker := time.NewTicker(constants.WatchPollInterval)
	defer ticker.Stop()

	w.log.Info("watching", "root", w.root)
	for {
		select {
		case <-ctx.Done():
			close(paths)
			<-done
			return ctx.Err()

		case ev, ok := <-fw.Events:
			if !ok {
				close(paths)
				<-done
				return nil
			}
			if ev.Op&fsnotify.Create == 0 {
				continue
			}
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				w.addSubtree(ctx, fw, ev.Name, paths)
				continue
			}
			if !metadata.Recognized(ev.Name) {
				continue
			}
			select {
			case paths <- ev.Name:
			case <-ctx.Done():
			}

		case err, ok := <-fw.Errors:
			if ok && err != nil {
				w.log.Warn("watch error", "error", err)
			}

		case <-ticker.C:
			// Slow safety net for events lost to editor rename tricks or
			// network filesystems. Rescans are cheap: every write is keyed.
			if err := w.scanner.Scan(ctx); err != nil && ctx.Err() == nil {
				w.log.Warn("periodic rescan failed", "error", err)
			}
		}
	}
}

// ingestLoop consumes created paths, waits out the settle delay and ingests
// files not yet in the catalog.
func (w *Watcher) ingestLoop(ctx context.Context, paths <-chan string) {
	for path := range paths {
		select {
		case <-time.After(constants.WatchSettleDelay):
		case <-ctx.Done():
			return
		}

		if known, err := w.store.HasSongAtPath(ctx, path); err != nil {
			w.log.Warn("catalog lookup failed", "path", path, "error", err)
			continue
		} else if known {
			continue
		}

		if w.scanner.ingest(ctx, path) {
			w.log.Info("ingested new file", "path", path)
		}
	}
}

// addSubtree registers watches for a newly created directory tree and queues
// any audio files that were copied in before the watch landed.
func (w *Watcher) addSubtree(ctx context.Context, fw *fsnotify.Watcher, root string, paths chan<- string) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := fw.Add(path); err != nil {
				w.log.Warn("failed to watch directory", "path", path, "error", err)
			}
			return nil
		}
		if metadata.Recognized(path) {
			select {
			case paths <- path:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		w.log.Warn("failed to watch new directory", "path", root, "error", err)
	}
}

// watchTree adds a watch on every directory under root.
func watchTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fw.Add(path)
		}
		return nil
	})
}
