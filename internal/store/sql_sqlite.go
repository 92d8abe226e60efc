package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/migrations/queuedb"
)

// DB wraps the shared sql handle used by the sqlite-backed repositories.
type DB struct {
	*sql.DB
	logger *logger.Logger
}

// NewConnectSQLite opens (creating if needed) the queue database file, pings
// it and runs the embedded migrations.
func NewConnectSQLite(ctx context.Context, path string, log *logger.Logger) (*DB, error) {
	if err := createLocalDBFileIfNotExists(path); err != nil {
		log.Err(err).Str("path", path).Msg("error creating queue database file")
		return nil, fmt.Errorf("error creating queue database file: %w", err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		log.Err(err).Msg("error opening queue database")
		return nil, fmt.Errorf("error opening connection to queue db: %w", err)
	}

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Msg("error connecting queue database (ping)")
		return nil, err
	}

	if err = queuedb.Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate queue db: %w", err)
	}

	log.Debug().Str("path", path).Msg("connected to queue database")

	return &DB{DB: conn, logger: log}, nil
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if dbFile == ":memory:" {
		return nil
	}

	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		if dir := filepath.Dir(dbFile); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("error creating queue db dir: %w", err)
			}
		}
		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating queue db file: %w", err)
		}
		f.Close()
	}

	return nil
}
