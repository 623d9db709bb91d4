package store

// Unique keys carry the idempotence contract: rescanning the same files must
// never grow the catalog. Songs are unique by (name, path); albums by name
// alone, so one shared-title album can absorb songs from several releases.
const schema = `
CREATE TABLE IF NOT EXISTS artist (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	bio        TEXT NOT NULL DEFAULT '',
	picture    TEXT NOT NULL DEFAULT '',
	tags       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS album (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	artist     INTEGER NOT NULL REFERENCES artist(id),
	year       INTEGER,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS album_art (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	album      INTEGER NOT NULL REFERENCES album(id),
	path       TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (album, path)
);

CREATE TABLE IF NOT EXISTS genre (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS song (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	number          INTEGER NOT NULL DEFAULT 0,
	disc            INTEGER,
	name            TEXT NOT NULL,
	path            TEXT NOT NULL,
	album           INTEGER NOT NULL REFERENCES album(id),
	album_artist    INTEGER NOT NULL REFERENCES artist(id),
	liked           INTEGER NOT NULL DEFAULT 0,
	duration        INTEGER NOT NULL DEFAULT 0,
	plays           INTEGER NOT NULL DEFAULT 0,
	lossless        INTEGER NOT NULL DEFAULT 0,
	sample_rate     INTEGER,
	bits_per_sample INTEGER,
	num_channels    INTEGER,
	created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (name, path)
);

CREATE TABLE IF NOT EXISTS song_artist (
	song   INTEGER NOT NULL REFERENCES song(id),
	artist INTEGER NOT NULL REFERENCES artist(id),
	UNIQUE (song, artist)
);

CREATE TABLE IF NOT EXISTS song_genre (
	song  INTEGER NOT NULL REFERENCES song(id),
	genre INTEGER NOT NULL REFERENCES genre(id),
	UNIQUE (song, genre)
);

CREATE INDEX IF NOT EXISTS idx_song_album ON song(album);
CREATE INDEX IF NOT EXISTS idx_song_path  ON song(path);
`
