package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/models"
)

const (
	getDeviceState = `SELECT device_id, state, version, vector, updated_at
		FROM device_states
		WHERE device_id = $1;`

	getDeviceStateForUpdate = `SELECT device_id, state, version, vector, updated_at
		FROM device_states
		WHERE device_id = $1
		FOR UPDATE;`

	upsertDeviceState = `INSERT INTO device_states (device_id, state, version, vector, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (device_id) DO UPDATE SET
			state = excluded.state,
			version = excluded.version,
			vector = excluded.vector,
			updated_at = excluded.updated_at;`

	advanceDeviceState = `UPDATE device_states
		SET state = $2, version = $3, vector = $4, updated_at = $5
		WHERE device_id = $1;`

	appendJournalEntry = `INSERT INTO transition_journal
		(device_id, operation_id, kind, new_state, result_version, payload_digest)
		VALUES ($1, $2, $3, $4, $5, $6);`

	getJournalRange = `SELECT operation_id, kind, payload_digest, result_version
		FROM transition_journal
		WHERE device_id = $1 AND result_version > $2 AND result_version <= $3
		ORDER BY result_version ASC;`

	operationJournaled = `SELECT EXISTS (
			SELECT 1 FROM transition_journal
			WHERE device_id = $1 AND operation_id = $2
		);`
)

type postgresStateRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewPostgresStateRepository returns a StateRepository backed by the server
// state database.
func NewPostgresStateRepository(db *DB, log *logger.Logger) StateRepository {
	return &postgresStateRepository{db: db, logger: log}
}

func (r *postgresStateRepository) GetState(ctx context.Context, deviceID string) (models.StateSnapshot, error) {
	var snapshot models.StateSnapshot
	var state string

	var vector string
	err := r.db.QueryRowContext(ctx, getDeviceState, deviceID).
		Scan(&snapshot.DeviceID, &state, &snapshot.Version, &vector, &snapshot.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.StateSnapshot{}, ErrStateNotFound
		}
		return models.StateSnapshot{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	snapshot.State = models.CareState(state)
	if snapshot.Vector, err = decodeStateVector(vector); err != nil {
		return models.StateSnapshot{}, err
	}
	return snapshot, nil
}

func (r *postgresStateRepository) PutState(ctx context.Context, snapshot models.StateSnapshot) error {
	if snapshot.Version <= 0 {
		snapshot.Version = 1
	}
	if snapshot.UpdatedAt.IsZero() {
		snapshot.UpdatedAt = time.Now().UTC()
	}

	vector, err := encodeStateVector(snapshot.Vector)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, upsertDeviceState,
		snapshot.DeviceID, string(snapshot.State), snapshot.Version, vector, snapshot.UpdatedAt)
	if err != nil {
		r.logger.Err(err).Str("device_id", snapshot.DeviceID).Msg("failed to upsert device state")
		return fmt.Errorf("put state for device %s: %w", snapshot.DeviceID, err)
	}

	return nil
}

func (r *postgresStateRepository) ApplyTransition(ctx context.Context, deviceID string, req models.TransitionRequest, newState models.CareState) (models.StateSnapshot, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.StateSnapshot{}, fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var current models.StateSnapshot
	var state, vector string
	err = tx.QueryRowContext(ctx, getDeviceStateForUpdate, deviceID).
		Scan(&current.DeviceID, &state, &current.Version, &vector, &current.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.StateSnapshot{}, ErrStateNotFound
		}
		return models.StateSnapshot{}, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	current.State = models.CareState(state)
	if current.Vector, err = decodeStateVector(vector); err != nil {
		return models.StateSnapshot{}, err
	}

	if req.ExpectedVersion != current.Version {
		return current, fmt.Errorf("expected version %d, have %d: %w",
			req.ExpectedVersion, current.Version, ErrVersionConflict)
	}

	next := current
	if newState != "" {
		next.State = newState
	}
	next.Version++
	next.UpdatedAt = time.Now().UTC()

	next.Vector = current.Vector.Clone()
	if actor := req.Context["actor"]; actor != "" {
		if next.Vector == nil {
			next.Vector = models.NewVersionVector()
		}
		next.Vector.Increment(actor)
	}
	nextVector, err := encodeStateVector(next.Vector)
	if err != nil {
		return models.StateSnapshot{}, err
	}

	if _, err = tx.ExecContext(ctx, advanceDeviceState,
		deviceID, string(next.State), next.Version, nextVector, next.UpdatedAt); err != nil {
		return models.StateSnapshot{}, fmt.Errorf("advance state for device %s: %w", deviceID, err)
	}

	_, err = tx.ExecContext(ctx, appendJournalEntry,
		deviceID, req.OperationID, string(req.Kind), string(next.State), next.Version, req.PayloadDigest)
	if err != nil {
		if isUniqueViolation(err) {
			return current, fmt.Errorf("operation %s: %w", req.OperationID, ErrOperationReplayed)
		}
		return models.StateSnapshot{}, fmt.Errorf("journal operation %s: %w", req.OperationID, err)
	}

	if err = tx.Commit(); err != nil {
		return models.StateSnapshot{}, fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return next, nil
}

func (r *postgresStateRepository) OperationApplied(ctx context.Context, deviceID, operationID string) (bool, error) {
	var applied bool
	if err := r.db.QueryRowContext(ctx, operationJournaled, deviceID, operationID).Scan(&applied); err != nil {
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return applied, nil
}

func (r *postgresStateRepository) JournalRange(ctx context.Context, deviceID string, fromVersion, toVersion int64) ([]models.JournalEntry, error) {
	rows, err := r.db.QueryContext(ctx, getJournalRange, deviceID, fromVersion, toVersion)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		var entry models.JournalEntry
		var kind string
		if err = rows.Scan(&entry.OperationID, &kind, &entry.PayloadDigest, &entry.ResultVersion); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		entry.Kind = models.ActionKind(kind)
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return entries, nil
}

func encodeStateVector(v models.VersionVector) (string, error) {
	if len(v) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode version vector: %w", err)
	}
	return string(raw), nil
}

func decodeStateVector(raw string) (models.VersionVector, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var v models.VersionVector
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("decode version vector: %w", err)
	}
	return v, nil
}
