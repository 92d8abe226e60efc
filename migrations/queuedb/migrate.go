// Package queuedb holds the embedded goose migrations for the client's
// durable action queue database (SQLite).
package queuedb

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var embedMigrations embed.FS

// Migrate brings the queue database schema up to date.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("migration error setting dialect for queue db: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("queue db migration error: %w", err)
	}

	return nil
}
