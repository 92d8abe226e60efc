package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/migrations/statedb"
)

// NewConnectPostgres opens the server state database, pings it and runs the
// embedded migrations.
func NewConnectPostgres(ctx context.Context, dsn string, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Err(err).Msg("error occured during database connection")
		return nil, fmt.Errorf("error occured during database connection: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(4)

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Msg("error connecting database (ping)")
		return nil, err
	}

	if err = statedb.Migrate(conn); err != nil {
		return nil, fmt.Errorf("migrate state db: %w", err)
	}

	log.Info().Msg("connected to state database")

	return &DB{DB: conn, logger: log}, nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation
	}

	return false
}
