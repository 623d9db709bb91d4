package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/calliope-music/calliope/internal/domain"
)

func nullIfZero(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

// UpsertSong inserts a song row or returns the existing one keyed by
// (name, path). On conflict the tag-derived columns are refreshed so edited
// tags land on rescan; liked and plays are never touched.
func (s *Store) UpsertSong(ctx context.Context, meta *domain.AudioMetadata, album, albumArtist int64) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO song (
			number, disc, name, path, album, album_artist, duration,
			lossless, sample_rate, bits_per_sample, num_channels
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, path) DO UPDATE SET
			number          = excluded.number,
			disc            = excluded.disc,
			album           = excluded.album,
			album_artist    = excluded.album_artist,
			duration        = excluded.duration,
			lossless        = excluded.lossless,
			sample_rate     = excluded.sample_rate,
			bits_per_sample = excluded.bits_per_sample,
			num_channels    = excluded.num_channels,
			updated_at      = CURRENT_TIMESTAMP
		RETURNING id`,
		meta.Number, nullIfZero(meta.Disc), meta.Name, meta.Path, album,
		albumArtist, meta.Duration, meta.Lossless, nullIfZero(meta.SampleRate),
		nullIfZero(meta.BitsPerSample), nullIfZero(meta.NumChannels),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert song %q: %w", meta.Name, err)
	}
	return id, nil
}

// LinkSongArtist binds a performing artist to a song. Idempotent.
func (s *Store) LinkSongArtist(ctx context.Context, song, artist int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO song_artist (song, artist)
		VALUES (?, ?)
		ON CONFLICT (song, artist) DO NOTHING`,
		song, artist,
	)
	if err != nil {
		return fmt.Errorf("link song %d artist %d: %w", song, artist, err)
	}
	return nil
}

// LinkSongGenre binds a genre to a song. Idempotent.
func (s *Store) LinkSongGenre(ctx context.Context, song, genre int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO song_genre (song, genre)
		VALUES (?, ?)
		ON CONFLICT (song, genre) DO NOTHING`,
		song, genre,
	)
	if err != nil {
		return fmt.Errorf("link song %d genre %d: %w", song, genre, err)
	}
	return nil
}

// ErrNotFound is returned by reads for ids that do not exist.
var ErrNotFound = errors.New("not found")

// GetSong returns one song row by id.
func (s *Store) GetSong(ctx context.Context, id int64) (*domain.Song, error) {
	var song domain.Song
	err := s.db.GetContext(ctx, &song, `SELECT * FROM song WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("song %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get song %d: %w", id, err)
	}
	return &song, nil
}

// SongPath returns the filesystem path of a song.
func (s *Store) SongPath(ctx context.Context, id int64) (string, error) {
	var path string
	err := s.db.GetContext(ctx, &path, `SELECT path FROM song WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("song %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("song path %d: %w", id, err)
	}
	return path, nil
}

// HasSongAtPath reports whether any song row points at the given path. Used
// by the watcher to skip files already in the catalog.
func (s *Store) HasSongAtPath(ctx context.Context, path string) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM song WHERE path = ?`, path); err != nil {
		return false, fmt.Errorf("song at path %q: %w", path, err)
	}
	return n > 0, nil
}

// IncrementPlays bumps the play counter of a song.
func (s *Store) IncrementPlays(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE song SET plays = plays + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("increment plays %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("song %d: %w", id, ErrNotFound)
	}
	return nil
}

// SetLiked sets the liked flag of a song.
func (s *Store) SetLiked(ctx context.Context, id int64, liked bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE song SET liked = ? WHERE id = ?`, liked, id)
	if err != nil {
		return fmt.Errorf("set liked %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("song %d: %w", id, ErrNotFound)
	}
	return nil
}

// CountSongs returns the catalog song count.
func (s *Store) CountSongs(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM song`); err != nil {
		return 0, fmt.Errorf("count songs: %w", err)
	}
	return n, nil
}
