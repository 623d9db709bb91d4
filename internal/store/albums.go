package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/calliope-music/calliope/internal/domain"
)

// UpsertAlbum inserts an album or returns the existing row's id, reporting
// whether the row was created by this call. Albums are keyed by name alone,
// so the first sighting's artist and year stick.
func (s *Store) UpsertAlbum(ctx context.Context, name string, artist int64, year int) (int64, bool, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, `SELECT id FROM album WHERE name = ?`, name)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("find album %q: %w", name, err)
	}

	yr := sql.NullInt64{Int64: int64(year), Valid: year != 0}
	err = s.db.QueryRowxContext(ctx, `
		INSERT INTO album (name, artist, year)
		VALUES (?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id`,
		name, artist, yr,
	).Scan(&id)
	if err != nil {
		return 0, false, fmt.Errorf("upsert album %q: %w", name, err)
	}
	return id, true, nil
}

// LinkAlbumArt binds an artwork key to an album. Re-binding the same key is
// a no-op.
func (s *Store) LinkAlbumArt(ctx context.Context, album int64, key string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO album_art (album, path)
		VALUES (?, ?)
		ON CONFLICT (album, path) DO NOTHING`,
		album, key,
	)
	if err != nil {
		return fmt.Errorf("link album art %d %q: %w", album, key, err)
	}
	return nil
}

// GetAlbum returns one album row by id.
func (s *Store) GetAlbum(ctx context.Context, id int64) (*domain.Album, error) {
	var a domain.Album
	if err := s.db.GetContext(ctx, &a, `SELECT * FROM album WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("get album %d: %w", id, err)
	}
	return &a, nil
}

// AlbumArtKeys returns the artwork keys bound to an album, oldest first.
func (s *Store) AlbumArtKeys(ctx context.Context, album int64) ([]string, error) {
	var keys []string
	err := s.db.SelectContext(ctx, &keys,
		`SELECT path FROM album_art WHERE album = ? ORDER BY id`, album)
	if err != nil {
		return nil, fmt.Errorf("album art keys %d: %w", album, err)
	}
	return keys, nil
}
