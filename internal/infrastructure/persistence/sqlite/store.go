// Package sqlite persists settings and viewer restriction records in a
// single local database file.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite: empty db path")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("sqlite: creating dir: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	const settingsTable = `
CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT,
	updated_at TIMESTAMP NOT NULL
);`

	if _, err := db.Exec(settingsTable); err != nil {
		return fmt.Errorf("sqlite: migrate settings: %w", err)
	}

	const viewersTable = `
CREATE TABLE IF NOT EXISTS viewers (
	viewer_id TEXT PRIMARY KEY,
	username TEXT,
	is_muted INTEGER NOT NULL DEFAULT 0,
	mute_expires_at TIMESTAMP,
	has_cooldown INTEGER NOT NULL DEFAULT 0,
	cooldown_gap_seconds INTEGER NOT NULL DEFAULT 0,
	cooldown_expires_at TIMESTAMP,
	last_tts_at TIMESTAMP,
	updated_at TIMESTAMP NOT NULL
);`

	if _, err := db.Exec(viewersTable); err != nil {
		return fmt.Errorf("sqlite: migrate viewers: %w", err)
	}

	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
