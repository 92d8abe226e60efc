// Package statedb holds the embedded goose migrations for the reference
// state server's PostgreSQL store.
package statedb

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed *.sql
var embedMigrations embed.FS

// Migrate brings the state database schema up to date.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("migration error setting dialect for state db: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("state db migration error: %w", err)
	}

	return nil
}
