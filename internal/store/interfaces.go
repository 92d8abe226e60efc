package store

import (
	"context"

	"github.com/telecare-labs/offsync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/state_store_mock.go -package=mock

// StateRepository is the server-side store of versioned device states plus
// the journal of applied transitions.
type StateRepository interface {
	// GetState returns the current snapshot for a device, or
	// ErrStateNotFound.
	GetState(ctx context.Context, deviceID string) (models.StateSnapshot, error)

	// PutState seeds or overwrites a device's state document. Used by
	// provisioning, not by the transition path.
	PutState(ctx context.Context, snapshot models.StateSnapshot) error

	// ApplyTransition atomically checks req.ExpectedVersion against the
	// stored version, applies the new state, bumps the version and appends a
	// journal entry. On a version mismatch it returns the current snapshot
	// together with ErrVersionConflict; on a replayed operation id it
	// returns ErrOperationReplayed. Nothing is half-applied on any error.
	ApplyTransition(ctx context.Context, deviceID string, req models.TransitionRequest, newState models.CareState) (models.StateSnapshot, error)

	// OperationApplied reports whether the journal already holds the given
	// operation id, meaning an earlier attempt applied it.
	OperationApplied(ctx context.Context, deviceID, operationID string) (bool, error)

	// JournalRange returns the journal entries of a device with result
	// versions in (fromVersion, toVersion], ordered by result version.
	JournalRange(ctx context.Context, deviceID string, fromVersion, toVersion int64) ([]models.JournalEntry, error)
}
