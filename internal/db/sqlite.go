// Package db opens the SQLite files csvpack exports into and migrates their
// metadata schema.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
)

// pragmas applied to every export connection.
var pragmas = map[string]string{
	"_journal_mode": "WAL",
	"_busy_timeout": "5000",
	"_synchronous":  "NORMAL",
	"_foreign_keys": "on",
	"_txlock":       "immediate",
}

// OpenSQLite opens the SQLite file at path, creating it and its directory
// when missing. Exports are single-writer batch jobs, so the pool holds one
// connection.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory for %s: %w", path, err)
		}
	}

	db, err := sql.Open("sqlite3", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	return db, nil
}

func buildDSN(path string) string {
	params := url.Values{}
	for k, v := range pragmas {
		params.Set(k, v)
	}
	return path + "?" + params.Encode()
}
