// Package domain defines the catalog entities and the transient metadata
// record exchanged between the format parsers and the resolver.
package domain

import (
	"database/sql"
	"time"
)

// Artist is a catalog artist row. Created on first sighting of a name;
// enrichment (bio, tags, picture) happens only at creation time and the
// ingestion path never updates the row afterwards.
type Artist struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Bio       string    `db:"bio"`
	Picture   string    `db:"picture"`
	Tags      string    `db:"tags"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Album is a catalog album row. Albums are matched by name only; see the
// resolver for the consequences of that choice.
type Album struct {
	ID        int64         `db:"id"`
	Name      string        `db:"name"`
	Artist    int64         `db:"artist"`
	Year      sql.NullInt64 `db:"year"`
	CreatedAt time.Time     `db:"created_at"`
	UpdatedAt time.Time     `db:"updated_at"`
}

// AlbumArt links an album to a content-addressed image key.
type AlbumArt struct {
	ID        int64     `db:"id"`
	Album     int64     `db:"album"`
	Path      string    `db:"path"`
	CreatedAt time.Time `db:"created_at"`
}

// Genre is a catalog genre row, unique by name.
type Genre struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Song is a catalog song row, unique by (name, path) so rescans are
// idempotent. Plays and liked are mutated by the CRUD layer, not by
// ingestion.
type Song struct {
	ID            int64         `db:"id"`
	Number        int           `db:"number"`
	Disc          sql.NullInt64 `db:"disc"`
	Name          string        `db:"name"`
	Path          string        `db:"path"`
	Album         int64         `db:"album"`
	AlbumArtist   int64         `db:"album_artist"`
	Liked         bool          `db:"liked"`
	Duration      int           `db:"duration"`
	Plays         int           `db:"plays"`
	Lossless      bool          `db:"lossless"`
	SampleRate    sql.NullInt64 `db:"sample_rate"`
	BitsPerSample sql.NullInt64 `db:"bits_per_sample"`
	NumChannels   sql.NullInt64 `db:"num_channels"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

// Picture is an embedded image extracted from an audio file, with its
// semantic type label ("Cover (Front)", "Band Logo", ...).
type Picture struct {
	Type  string
	Bytes []byte
}

// AudioMetadata is the uniform record produced by a format parser for one
// scanned file. It is consumed once by the resolver and then discarded.
type AudioMetadata struct {
	Name        string
	Number      int
	Disc        int // 0 when absent
	Duration    int // seconds
	Album       string
	AlbumArtist string
	AlbumSort   string
	Artists     []string
	Genres      []string // nil when the file carries no genre tags
	Pictures    []Picture
	Path        string
	Year        int // 0 when absent

	Lossless      bool
	SampleRate    int // 0 when unknown
	BitsPerSample int
	NumChannels   int
}
