// Package db provides SQLite database initialization and access.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultPath returns the default database path: ~/.local/share/everylot/lots.db
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "everylot", "lots.db"), nil
}

// Open opens the lots dataset at path, creating the file and its
// directory when missing, then applies pragmas and migrations. The
// returned handle is closed again if either step fails.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("preparing dataset directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset %s: %w", path, err)
	}

	setup := []struct {
		step string
		run  func(*sql.DB) error
	}{
		{"configuring dataset", configure},
		{"running migrations", migrate},
	}
	for _, s := range setup {
		if err := s.run(db); err != nil {
			return nil, errors.Join(fmt.Errorf("%s: %w", s.step, err), db.Close())
		}
	}

	return db, nil
}

// configure sets SQLite pragmas. A single pipeline run holds the only
// connection, so the pool is capped at one to keep writes serialized.
func configure(db *sql.DB) error {
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("executing %s: %w", p, err)
		}
	}

	return nil
}
