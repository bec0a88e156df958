package sqldb

import (
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/phrazzld/hotel-listing-api/internal/config"
)

// OpenTestSQLite opens a hardened SQLite database in t.TempDir(), runs all
// migrations and registers cleanup.
func OpenTestSQLite(t *testing.T) *sql.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver: SQLite.Name,
		URL:    filepath.Join(t.TempDir(), "test.sqlite"),
	}
	db, dialect, err := Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open test sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	quiet := slog.New(slog.DiscardHandler)
	if err := Migrate(context.Background(), db, dialect, "up", quiet); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db
}
