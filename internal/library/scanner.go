package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/calliope-music/calliope/internal/logger"
	"github.com/calliope-music/calliope/internal/metadata"
)

// Scanner walks the music tree sequentially and feeds every recognized file
// through the resolver. One damaged file never stops the walk.
type Scanner struct {
	root       string
	resolver   *Resolver
	exceptions []string
	log        *logger.Logger
}

// NewScanner builds a scanner rooted at root.
func NewScanner(root string, resolver *Resolver, exceptions []string, log *logger.Logger) *Scanner {
	return &Scanner{
		root:       root,
		resolver:   resolver,
		exceptions: exceptions,
		log:        log.WithComponent("scanner"),
	}
}

// Scan walks the tree once. The walk itself only fails on filesystem errors
// at the root; per-file failures are logged and skipped.
func (s *Scanner) Scan(ctx context.Context) error {
	s.log.Info("scan started", "root", s.root)
	var seen, added int

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.root {
				return err
			}
			s.log.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !metadata.Recognized(path) {
			return nil
		}
		seen++
		if s.ingest(ctx, path) {
			added++
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan %s: %w", s.root, err)
	}

	s.log.Info("scan finished", "root", s.root, "seen", seen, "ingested", added)
	return nil
}

// ingest parses and resolves a single file, reporting whether it made it
// into the catalog.
func (s *Scanner) ingest(ctx context.Context, path string) bool {
	meta, err := metadata.Parse(path, s.exceptions)
	switch {
	case errors.Is(err, metadata.ErrUnimplemented):
		s.log.Debug("format not implemented", "path", path)
		return false
	case errors.Is(err, metadata.ErrMissingTitle):
		s.log.Warn("file has no title tag", "path", path)
		return false
	case err != nil:
		s.log.Warn("failed to parse file", "path", path, "error", err)
		return false
	}

	if err := s.resolver.AddSong(ctx, meta); err != nil {
		s.log.Warn("failed to resolve file", "path", path, "error", err)
		return false
	}
	s.log.Debug("ingested file", "title", meta.Name,
		"duration", metadata.FormatDuration(meta.Duration))
	return true
}
