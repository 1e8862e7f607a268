// Package db owns the SQLite schema and all snippet queries. The snippets
// table and the snippets_fts full-text index are mutated together, inside a
// single transaction per operation, so callers never observe one without the
// other.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/offstack/offstack/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/offstack.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.offstack.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	// Explicit chmod (best-effort, may not work on all platforms)
	_ = os.Chmod(baseDir, 0700)

	// Create exports subdirectory
	exportsDir := filepath.Join(baseDir, "exports")
	if err := os.MkdirAll(exportsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create exports directory: %w", err)
	}
	_ = os.Chmod(exportsDir, 0700)

	// Open database with pragmas in connection string (applies to all connections)
	dbPath := filepath.Join(baseDir, "offstack.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify WAL mode is active
	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	// Run migrations (this creates the file if it doesn't exist)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
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

// createFTS is the snippets_fts DDL, shared with ReindexAll so a repair pass
// can recreate the index table if it was lost.
const createFTS = `
CREATE VIRTUAL TABLE IF NOT EXISTS snippets_fts USING fts5(
  id UNINDEXED, title, code, description,
  tokenize='unicode61 remove_diacritics 2'
);`

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: snippets table + FTS5 index (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS snippets (
		  id          TEXT PRIMARY KEY,
		  title       TEXT NOT NULL,
		  code        TEXT NOT NULL,
		  language    TEXT NOT NULL,
		  description TEXT,
		  tags_json   TEXT,
		  folder_id   TEXT,
		  is_favorite INTEGER NOT NULL DEFAULT 0,
		  index_stale INTEGER NOT NULL DEFAULT 0,
		  created_at  TEXT NOT NULL,
		  updated_at  TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_snippets_updated
		ON snippets(updated_at DESC, id ASC);

		CREATE INDEX IF NOT EXISTS idx_snippets_stale
		ON snippets(index_stale) WHERE index_stale = 1;
		` + createFTS
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
