package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/plotwise/garden/internal/planting"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS plant_categories (
  name TEXT PRIMARY KEY,
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS plants (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  name_norm TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL,
  spacing TEXT NOT NULL DEFAULT '',
  row_spacing_cm REAL NOT NULL DEFAULT 0 CHECK(row_spacing_cm >= 0),
  plant_spacing_cm REAL NOT NULL DEFAULT 0 CHECK(plant_spacing_cm >= 0),
  notes TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(category) REFERENCES plant_categories(name)
);

CREATE INDEX IF NOT EXISTS idx_plants_category ON plants(category);
`,
	},
	{
		version: 2,
		name:    "plant_images",
		sql: `
ALTER TABLE plants ADD COLUMN image_url TEXT NOT NULL DEFAULT '';
ALTER TABLE plants ADD COLUMN image_thumb_url TEXT NOT NULL DEFAULT '';
ALTER TABLE plants ADD COLUMN image_author TEXT NOT NULL DEFAULT '';
ALTER TABLE plants ADD COLUMN image_license TEXT NOT NULL DEFAULT '';
ALTER TABLE plants ADD COLUMN image_page_url TEXT NOT NULL DEFAULT '';
ALTER TABLE plants ADD COLUMN image_checked_at DATETIME;

CREATE TABLE IF NOT EXISTS image_lookups (
  query_norm TEXT PRIMARY KEY,
  found INTEGER NOT NULL DEFAULT 0,
  title TEXT NOT NULL DEFAULT '',
  url TEXT NOT NULL DEFAULT '',
  thumb_url TEXT NOT NULL DEFAULT '',
  author TEXT NOT NULL DEFAULT '',
  license TEXT NOT NULL DEFAULT '',
  page_url TEXT NOT NULL DEFAULT '',
  raw_json TEXT,
  fetched_at DATETIME NOT NULL,
  expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_image_lookups_expires_at ON image_lookups(expires_at);
`,
	},
}

func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
	}

	for _, name := range planting.Categories() {
		if _, err := db.Exec(`INSERT OR IGNORE INTO plant_categories(name) VALUES(?)`, name); err != nil {
			return fmt.Errorf("seed plant category %s: %w", name, err)
		}
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin migration tx: %w", err)
	}
	if _, err := tx.Exec(m.sql); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
	}
	if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("record migration version %d: %w", m.version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration version %d: %w", m.version, err)
	}
	return nil
}

// SchemaVersion returns the highest applied migration, or 0 on a fresh file.
func SchemaVersion(db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(version) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}
