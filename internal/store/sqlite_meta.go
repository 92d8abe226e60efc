package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/models"
)

type sqliteConflictRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewSQLiteConflictRepository returns a ConflictRepository over the shared
// sqlite handle.
func NewSQLiteConflictRepository(db *DB, log *logger.Logger) ConflictRepository {
	return &sqliteConflictRepository{db: db, logger: log}
}

func (r *sqliteConflictRepository) SaveConflict(ctx context.Context, record models.ConflictRecord) error {
	query, args, err := sq.Insert("conflicts").
		Columns("id", "operation_id", "kind", "local_payload", "local_version",
			"server_version", "detected_at", "resolved").
		Values(record.ID, record.OperationID, string(record.Kind), record.LocalPayload,
			record.LocalVersion, record.ServerVersion, record.DetectedAt.UTC(), record.Resolved).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("operation_id", record.OperationID).Msg("failed to persist conflict record")
		return fmt.Errorf("save conflict record %s: %w", record.ID, err)
	}

	return nil
}

func (r *sqliteConflictRepository) ListConflicts(ctx context.Context, includeResolved bool) ([]models.ConflictRecord, error) {
	builder := sq.Select("id", "operation_id", "kind", "local_payload", "local_version",
		"server_version", "detected_at", "resolved").
		From("conflicts").
		OrderBy("detected_at ASC")
	if !includeResolved {
		builder = builder.Where(sq.Eq{"resolved": false})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var records []models.ConflictRecord
	for rows.Next() {
		var (
			record models.ConflictRecord
			kind   string
		)
		if err = rows.Scan(&record.ID, &record.OperationID, &kind, &record.LocalPayload,
			&record.LocalVersion, &record.ServerVersion, &record.DetectedAt, &record.Resolved); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		record.Kind = models.ActionKind(kind)
		record.DetectedAt = record.DetectedAt.UTC()
		records = append(records, record)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return records, nil
}

func (r *sqliteConflictRepository) ResolveConflict(ctx context.Context, id string) error {
	query, args, err := sq.Update("conflicts").
		Set("resolved", true).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("resolve conflict %s: %w", id, err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrConflictNotFound
	}

	return nil
}

func (r *sqliteConflictRepository) CountUnresolvedConflicts(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").
		From("conflicts").
		Where(sq.Eq{"resolved": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var count int
	if err = r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count unresolved conflicts: %w", err)
	}

	return count, nil
}

type sqliteSummaryRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewSQLiteSummaryRepository returns a SummaryRepository over the shared
// sqlite handle.
func NewSQLiteSummaryRepository(db *DB, log *logger.Logger) SummaryRepository {
	return &sqliteSummaryRepository{db: db, logger: log}
}

const upsertSyncState = `INSERT INTO sync_state (id, last_sync_at, pending_count, conflict_count)
	VALUES (1, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		last_sync_at = excluded.last_sync_at,
		pending_count = excluded.pending_count,
		conflict_count = excluded.conflict_count;`

func (r *sqliteSummaryRepository) SaveSyncState(ctx context.Context, state models.SyncState) error {
	_, err := r.db.ExecContext(ctx, upsertSyncState,
		state.LastSyncAt.UTC(), state.PendingCount, state.ConflictCount)
	if err != nil {
		return fmt.Errorf("save sync state: %w", err)
	}

	return nil
}

func (r *sqliteSummaryRepository) GetSyncState(ctx context.Context) (models.SyncState, error) {
	var (
		state      models.SyncState
		lastSyncAt sql.NullTime
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT last_sync_at, pending_count, conflict_count FROM sync_state WHERE id = 1;`).
		Scan(&lastSyncAt, &state.PendingCount, &state.ConflictCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.SyncState{}, nil
		}
		return models.SyncState{}, fmt.Errorf("get sync state: %w", err)
	}

	if lastSyncAt.Valid {
		state.LastSyncAt = lastSyncAt.Time.UTC()
	}

	return state, nil
}
