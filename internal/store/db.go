// Package store persists the catalog in SQLite. All find-or-create paths go
// through single-statement upserts so concurrent scanners and watchers never
// race a check against an insert.
package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/calliope-music/calliope/internal/logger"
)

// Store wraps the catalog database.
type Store struct {
	db  *sqlx.DB
	log *logger.Logger
}

// Open opens (creating if needed) the SQLite database at path and applies
// the schema. WAL mode lets the HTTP handlers read while a scan writes.
func Open(path string, log *logger.Logger) (*Store, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	// modernc.org/sqlite serializes writers itself; a single connection
	// avoids SQLITE_BUSY under concurrent upserts.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, log: log.WithComponent("store")}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
