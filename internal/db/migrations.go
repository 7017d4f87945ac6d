package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// migrations is an ordered list of SQL statements to run.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS lots (
		id                 INTEGER PRIMARY KEY,
		address            TEXT,
		zoning             TEXT,
		land_value         NUMERIC,
		improvement_value  NUMERIC,
		neighborhood       TEXT,
		zipcode            TEXT,
		acreage            NUMERIC,
		lat                REAL,
		lon                REAL,
		auditor_parcel_ids TEXT,
		is_posted          INTEGER NOT NULL DEFAULT 0,
		post_url           TEXT,
		post_date          DATE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_lots_eligible ON lots (is_posted, improvement_value)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	// Column additions for datasets created before these columns existed.
	columnMigrations := []struct {
		table, column, definition string
	}{
		{"lots", "auditor_parcel_ids", "TEXT"},
		{"lots", "post_url", "TEXT"},
		{"lots", "post_date", "DATE"},
	}

	for _, cm := range columnMigrations {
		if err := addColumnIfNotExists(db, cm.table, cm.column, cm.definition); err != nil {
			return fmt.Errorf("adding %s.%s: %w", cm.table, cm.column, err)
		}
	}

	return nil
}

// addColumnIfNotExists adds a column to a table if it doesn't already exist.
func addColumnIfNotExists(db *sql.DB, table, column, definition string) error {
	cols, err := columns(db, table)
	if err != nil {
		return err
	}
	for _, name := range cols {
		if name == column {
			return nil
		}
	}

	_, err = db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}

// columns returns the column names of a table in declaration order.
func columns(db *sql.DB, table string) ([]string, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("checking table info: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			slog.Warn("Closing table info rows", "table", table, "error", cerr)
		}
	}()

	var names []string
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("scanning column info: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating columns: %w", err)
	}

	return names, nil
}
