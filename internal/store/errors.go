package store

import "errors"

// Sentinel errors returned by repository methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrActionNotFound is returned when a lookup targets a queued action id
	// that is not (or no longer) present in the queue.
	ErrActionNotFound = errors.New("queued action not found")

	// ErrConflictNotFound is returned when a conflict record id does not
	// exist in the conflict log.
	ErrConflictNotFound = errors.New("conflict record not found")

	// ErrStateNotFound is returned when no state document exists for the
	// requested device.
	ErrStateNotFound = errors.New("device state not found")

	// ErrVersionConflict is returned when an optimistic-locking check fails:
	// the expected version supplied with a transition does not match the
	// version currently stored, meaning another actor has moved the state
	// since the caller last looked.
	ErrVersionConflict = errors.New("state version conflict occurred")

	// ErrOperationReplayed is returned when the transition journal already
	// holds the submitted operation id. The transition was applied by an
	// earlier attempt whose acknowledgement the client never saw.
	ErrOperationReplayed = errors.New("operation already journaled")
)

// Low-level database operation errors. These are returned (or wrapped) by
// repository methods when a storage-level operation fails before any domain
// logic can be applied.
var (
	ErrBuildingSQLQuery     = errors.New("error building sql query")
	ErrExecutingQuery       = errors.New("error executing sql query")
	ErrBeginningTransaction = errors.New("failed to begin transaction")
	ErrCommitingTransaction = errors.New("failed to commit transaction")
	ErrScanningRow          = errors.New("failed to scan row")
)
