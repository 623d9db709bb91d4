package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UpsertGenre inserts a genre or returns the existing row's id.
func (s *Store) UpsertGenre(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO genre (name)
		VALUES (?)
		ON CONFLICT (name) DO UPDATE SET name = excluded.name
		RETURNING id`,
		name,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert genre %q: %w", name, err)
	}
	return id, nil
}

// GenreIDByName looks up a genre's id by its exact name.
func (s *Store) GenreIDByName(ctx context.Context, name string) (id int64, found bool, err error) {
	err = s.db.GetContext(ctx, &id, `SELECT id FROM genre WHERE name = ?`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup genre %q: %w", name, err)
	}
	return id, true, nil
}
