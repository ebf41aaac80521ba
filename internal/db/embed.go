package db

import (
	"embed"
	"io/fs"
)

// EmbedMigrations contains the metadata schema migrations.
//
//go:embed migrations/*.sql
var EmbedMigrations embed.FS

func migrationsFS() fs.FS {
	sub, err := fs.Sub(EmbedMigrations, "migrations")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}
	return sub
}
