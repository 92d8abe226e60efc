package store

import (
	"context"

	"github.com/telecare-labs/offsync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=../mock/client_store_mock.go -package=mock

// QueueRepository is the durable collection of queued actions, keyed by id
// with a secondary ordering index on enqueued_at. Every write is
// all-or-nothing: a failed call never leaves a half-written record.
type QueueRepository interface {
	// SaveAction persists a fully populated action. The record must be
	// durable before SaveAction returns.
	SaveAction(ctx context.Context, action models.QueuedAction) error

	// GetAction loads one action by id. Returns ErrActionNotFound when the
	// id is absent.
	GetAction(ctx context.Context, id string) (models.QueuedAction, error)

	// ListActions returns a snapshot of all queued actions ordered by
	// enqueued_at ascending.
	ListActions(ctx context.Context) ([]models.QueuedAction, error)

	// DeleteAction removes an action by id. Deleting an absent id is a
	// no-op, which makes crash-replayed dequeues safe.
	DeleteAction(ctx context.Context, id string) error

	// IncrementRetry bumps the retry counter of an action. No-op if the
	// action was already removed.
	IncrementRetry(ctx context.Context, id string) error

	// SetStatus updates only the mutable status field. No-op if absent.
	SetStatus(ctx context.Context, id string, status models.ActionStatus) error
}

// ConflictRepository is the durable log of discarded conflicting edits.
type ConflictRepository interface {
	SaveConflict(ctx context.Context, record models.ConflictRecord) error
	ListConflicts(ctx context.Context, includeResolved bool) ([]models.ConflictRecord, error)

	// ResolveConflict marks a record as handled by a human. Returns
	// ErrConflictNotFound for unknown ids.
	ResolveConflict(ctx context.Context, id string) error

	CountUnresolvedConflicts(ctx context.Context) (int, error)
}

// SummaryRepository persists the single small sync summary record.
type SummaryRepository interface {
	SaveSyncState(ctx context.Context, state models.SyncState) error

	// GetSyncState returns the zero value (no error) before the first sync.
	GetSyncState(ctx context.Context) (models.SyncState, error)
}

// ClientStorages aggregates the client-side repositories over one shared
// backend, selected by configuration.
type ClientStorages struct {
	Queue     QueueRepository
	Conflicts ConflictRepository
	Summary   SummaryRepository

	closer func() error
}

// Close releases the underlying database handle.
func (s *ClientStorages) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
