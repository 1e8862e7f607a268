package ops

import (
	"database/sql"
	"testing"

	"github.com/offstack/offstack/internal/config"
	"github.com/offstack/offstack/internal/db"
)

// testStore opens a fresh store under t.TempDir().
func testStore(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func testConfig() *config.Config {
	return config.DefaultConfig()
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
