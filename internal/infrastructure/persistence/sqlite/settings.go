package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Get reports ok=false for a key that has never been set; callers fall
// back to their documented defaults.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	const query = `SELECT value FROM settings WHERE key = ? LIMIT 1;`

	var value sql.NullString
	if err := s.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("sqlite: get setting %s: %w", key, err)
	}
	return value.String, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	const stmt = `
INSERT INTO settings (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	value=excluded.value,
	updated_at=excluded.updated_at;
`

	if _, err := s.db.ExecContext(ctx, stmt, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("sqlite: set setting %s: %w", key, err)
	}
	return nil
}
