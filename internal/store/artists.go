package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/calliope-music/calliope/internal/domain"
)

// UpsertArtist inserts an artist or returns the existing row's id. On
// conflict the enrichment columns are left untouched; they are written once
// at creation and never clobbered by rescans.
func (s *Store) UpsertArtist(ctx context.Context, name, bio, picture, tags string) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO artist (name, bio, picture, tags)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id`,
		name, bio, picture, tags,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert artist %q: %w", name, err)
	}
	return id, nil
}

// ArtistIDByName returns the id of the named artist, or found=false when the
// artist does not exist yet.
func (s *Store) ArtistIDByName(ctx context.Context, name string) (id int64, found bool, err error) {
	err = s.db.GetContext(ctx, &id, `SELECT id FROM artist WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup artist %q: %w", name, err)
	}
	return id, true, nil
}

// GetArtist returns one artist row by id.
func (s *Store) GetArtist(ctx context.Context, id int64) (*domain.Artist, error) {
	var a domain.Artist
	if err := s.db.GetContext(ctx, &a, `SELECT * FROM artist WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("get artist %d: %w", id, err)
	}
	return &a, nil
}
