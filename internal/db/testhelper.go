package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenTestSQLite opens a migrated database in t.TempDir() and closes it
// when the test ends.
func OpenTestSQLite(t testing.TB) *sql.DB {
	t.Helper()

	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.sqlite"))
	if err != nil {
		t.Fatalf("open test sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}
