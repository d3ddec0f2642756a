package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/tome/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// FileName is the database file created under the base directory.
const FileName = "tome.db"

// Querier is the execute/select contract the rest of the code stores through.
// Both *sql.DB and *sql.Tx satisfy it.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Init initializes the SQLite database at baseDir/tome.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.tome.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	// Pragmas in the connection string apply to every pooled connection.
	// foreign_keys is per-connection in SQLite, so it must live here.
	dbPath := filepath.Join(baseDir, FileName)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: characters and owned collections
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS characters (
		  id                   TEXT PRIMARY KEY,
		  name                 TEXT NOT NULL,
		  class                TEXT NOT NULL,
		  level                INTEGER NOT NULL DEFAULT 1,
		  race                 TEXT NOT NULL,
		  background           TEXT NOT NULL,
		  strength             INTEGER NOT NULL DEFAULT 10,
		  dexterity            INTEGER NOT NULL DEFAULT 10,
		  constitution         INTEGER NOT NULL DEFAULT 10,
		  intelligence         INTEGER NOT NULL DEFAULT 10,
		  wisdom               INTEGER NOT NULL DEFAULT 10,
		  charisma             INTEGER NOT NULL DEFAULT 10,
		  proficiency_bonus    INTEGER NOT NULL DEFAULT 2,
		  hit_points_current   INTEGER NOT NULL DEFAULT 10,
		  hit_points_max       INTEGER NOT NULL DEFAULT 10,
		  hit_points_temporary INTEGER NOT NULL DEFAULT 0,
		  armor_class          INTEGER NOT NULL DEFAULT 10,
		  initiative           INTEGER NOT NULL DEFAULT 0,
		  speed                INTEGER NOT NULL DEFAULT 30,
		  experience_points    INTEGER NOT NULL DEFAULT 0,
		  notes                TEXT,
		  created_at           INTEGER NOT NULL,
		  updated_at           INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_characters_updated
		ON characters(updated_at DESC, created_at DESC, id DESC);

		CREATE TABLE IF NOT EXISTS skills (
		  id           TEXT PRIMARY KEY,
		  character_id TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
		  name         TEXT NOT NULL,
		  name_norm    TEXT NOT NULL,
		  ability      TEXT NOT NULL,
		  proficient   INTEGER NOT NULL DEFAULT 0,
		  expertise    INTEGER NOT NULL DEFAULT 0,
		  bonus        INTEGER NOT NULL DEFAULT 0,
		  is_custom    INTEGER NOT NULL DEFAULT 0,
		  description  TEXT
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_skills_character_name_norm
		ON skills(character_id, name_norm);

		CREATE TABLE IF NOT EXISTS saving_throws (
		  id           TEXT PRIMARY KEY,
		  character_id TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
		  ability      TEXT NOT NULL,
		  proficient   INTEGER NOT NULL DEFAULT 0,
		  bonus        INTEGER NOT NULL DEFAULT 0
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_saving_throws_character_ability
		ON saving_throws(character_id, ability);

		CREATE TABLE IF NOT EXISTS features (
		  id           TEXT PRIMARY KEY,
		  character_id TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
		  name         TEXT NOT NULL,
		  description  TEXT NOT NULL,
		  source       TEXT NOT NULL,
		  level        INTEGER NOT NULL,
		  uses_max     INTEGER,
		  uses_current INTEGER,
		  rest_type    TEXT,
		  is_custom    INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_features_character
		ON features(character_id);

		CREATE TABLE IF NOT EXISTS traits (
		  id           TEXT PRIMARY KEY,
		  character_id TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
		  name         TEXT NOT NULL,
		  description  TEXT NOT NULL,
		  source       TEXT NOT NULL,
		  is_custom    INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_traits_character
		ON traits(character_id);

		CREATE TABLE IF NOT EXISTS inventory (
		  id             TEXT PRIMARY KEY,
		  character_id   TEXT NOT NULL REFERENCES characters(id) ON DELETE CASCADE,
		  name           TEXT NOT NULL,
		  quantity       INTEGER NOT NULL DEFAULT 1,
		  weight         REAL NOT NULL DEFAULT 0,
		  value_amount   REAL NOT NULL DEFAULT 0,
		  value_currency TEXT NOT NULL DEFAULT 'gp',
		  description    TEXT,
		  equipped       INTEGER NOT NULL DEFAULT 0,
		  category       TEXT NOT NULL,
		  properties     TEXT,
		  is_custom      INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_inventory_character
		ON inventory(character_id);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
