package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/models"
)

type sqliteQueueRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewSQLiteQueueRepository returns a QueueRepository over the shared sqlite
// handle.
func NewSQLiteQueueRepository(db *DB, log *logger.Logger) QueueRepository {
	return &sqliteQueueRepository{db: db, logger: log}
}

func (r *sqliteQueueRepository) SaveAction(ctx context.Context, action models.QueuedAction) error {
	payload, err := models.EncodePayload(action.Payload)
	if err != nil {
		return fmt.Errorf("encode payload for action %s: %w", action.ID, err)
	}

	vector, err := encodeVector(action.Vector)
	if err != nil {
		return fmt.Errorf("encode vector for action %s: %w", action.ID, err)
	}

	query, args, err := sq.Insert("actions").
		Columns("id", "kind", "payload", "expected_version", "enqueued_at", "vector", "retry_count", "status").
		Values(action.ID, string(action.Kind), payload, action.ExpectedVersion,
			action.EnqueuedAt.UTC(), vector, action.RetryCount, string(action.Status)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).Str("action_id", action.ID).Msg("failed to persist queued action")
		return fmt.Errorf("save queued action %s: %w", action.ID, err)
	}

	return nil
}

func (r *sqliteQueueRepository) GetAction(ctx context.Context, id string) (models.QueuedAction, error) {
	query, args, err := sq.Select("id", "kind", "payload", "expected_version", "enqueued_at", "vector", "retry_count", "status").
		From("actions").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.QueuedAction{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	action, err := scanAction(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.QueuedAction{}, ErrActionNotFound
		}
		return models.QueuedAction{}, err
	}

	return action, nil
}

func (r *sqliteQueueRepository) ListActions(ctx context.Context) ([]models.QueuedAction, error) {
	query, args, err := sq.Select("id", "kind", "payload", "expected_version", "enqueued_at", "vector", "retry_count", "status").
		From("actions").
		OrderBy("enqueued_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var actions []models.QueuedAction
	for rows.Next() {
		action, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return actions, nil
}

func (r *sqliteQueueRepository) DeleteAction(ctx context.Context, id string) error {
	query, args, err := sq.Delete("actions").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	// Zero affected rows is fine: dequeue is idempotent.
	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete queued action %s: %w", id, err)
	}

	return nil
}

func (r *sqliteQueueRepository) IncrementRetry(ctx context.Context, id string) error {
	query, args, err := sq.Update("actions").
		Set("retry_count", sq.Expr("retry_count + 1")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("increment retry for action %s: %w", id, err)
	}

	return nil
}

func (r *sqliteQueueRepository) SetStatus(ctx context.Context, id string, status models.ActionStatus) error {
	query, args, err := sq.Update("actions").
		Set("status", string(status)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set status for action %s: %w", id, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAction(row rowScanner) (models.QueuedAction, error) {
	var (
		action     models.QueuedAction
		kind       string
		payload    []byte
		enqueuedAt time.Time
		vector     sql.NullString
		status     string
	)

	err := row.Scan(&action.ID, &kind, &payload, &action.ExpectedVersion,
		&enqueuedAt, &vector, &action.RetryCount, &status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.QueuedAction{}, err
		}
		return models.QueuedAction{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	action.Kind = models.ActionKind(kind)
	action.EnqueuedAt = enqueuedAt.UTC()
	action.Status = models.ActionStatus(status)

	action.Payload, err = models.DecodePayload(payload)
	if err != nil {
		return models.QueuedAction{}, fmt.Errorf("decode payload of action %s: %w", action.ID, err)
	}

	if vector.Valid && vector.String != "" {
		if err = json.Unmarshal([]byte(vector.String), &action.Vector); err != nil {
			return models.QueuedAction{}, fmt.Errorf("decode vector of action %s: %w", action.ID, err)
		}
	}

	return action, nil
}

// encodeVector returns nil for an empty vector so the column stays NULL.
func encodeVector(v models.VersionVector) (any, error) {
	if len(v) == 0 {
		return nil, nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
