package service

import (
	"context"

	"github.com/telecare-labs/offsync/models"
)

// No generated mocks for these interfaces: a mockgen mock in internal/mock
// would import this package back and cycle with its tests. Consumers stub
// them by hand.

// QueueService is the durable outbox of the client. Actions are accepted
// while offline and drained by the sync engine in enqueue order.
type QueueService interface {
	// Enqueue validates and persists a new action. The record is durable
	// before Enqueue returns. The assigned id doubles as the operation id
	// the server journals during replay.
	Enqueue(ctx context.Context, payload models.ActionPayload, expectedVersion int64, vector models.VersionVector) (models.QueuedAction, error)

	// Dequeue removes an action by id. Removing an absent id is a no-op so
	// a crash between server apply and local delete stays harmless.
	Dequeue(ctx context.Context, id string) error

	// GetAll returns a snapshot of the queue in FIFO order.
	GetAll(ctx context.Context) ([]models.QueuedAction, error)

	// IncrementRetry bumps the retry counter of a queued action.
	IncrementRetry(ctx context.Context, id string) error

	// SetStatus updates the mutable status field of a queued action.
	SetStatus(ctx context.Context, id string, status models.ActionStatus) error

	// PendingCount reports how many actions are waiting for replay.
	PendingCount(ctx context.Context) (int, error)

	// OnChange registers a listener invoked with a fresh queue snapshot
	// after every mutation. Returns an unsubscribe func.
	OnChange(listener QueueListener) func()
}

// QueueListener receives the full queue snapshot after each mutation.
type QueueListener func([]models.QueuedAction)

// SyncEngine replays the queued actions against the remote state service.
type SyncEngine interface {
	// Sync runs one replay session. At most one session runs at a time; a
	// call overlapping a running session returns an all-zero summary
	// without touching the queue. A batch halted early reports the reason
	// in the summary; errors mean bootstrap or storage failure.
	Sync(ctx context.Context) (models.SyncSummary, error)

	// OnSyncComplete registers a listener invoked with the summary of every
	// finished session. Returns an unsubscribe func.
	OnSyncComplete(listener SyncListener) func()
}

// SyncListener receives the summary of a finished replay session.
type SyncListener func(models.SyncSummary)

// ConflictService surfaces discarded concurrent edits to a human.
type ConflictService interface {
	// List returns conflict records, oldest first. Resolved records are
	// included only when includeResolved is set.
	List(ctx context.Context, includeResolved bool) ([]models.ConflictRecord, error)

	// Resolve marks a record as handled.
	Resolve(ctx context.Context, id string) error
}
