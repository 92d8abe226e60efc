package adapter

import (
	"errors"
	"fmt"
)

// Failure outcomes of a transition submission, mapped from the server
// response by the HTTP implementation. Only ErrNetwork is safe to retry
// blindly; every other value is a semantic outcome that a retry alone cannot
// repair.
var (
	// ErrInvalidTransition means the server's rule table forbids the
	// requested transition from its current state.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrBlocked means an active policy override vetoes this class of action
	// entirely. Callers should assume the block applies broadly.
	ErrBlocked = errors.New("action blocked by policy override")

	// ErrUnknownAction means the server does not recognise the action kind.
	ErrUnknownAction = errors.New("unknown action kind")

	// ErrStateNotFound means no state document exists for the device.
	ErrStateNotFound = errors.New("device state not found")

	// ErrNetwork wraps any transport-level failure, including timeouts and
	// gateway errors. The server state is unchanged.
	ErrNetwork = errors.New("network error")
)

// VersionConflictError reports that the server is ahead of the version the
// caller submitted. CurrentVersion carries where the server actually is so a
// replay session can adopt it without refetching.
type VersionConflictError struct {
	CurrentVersion int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict: server is at version %d", e.CurrentVersion)
}

// AsVersionConflict unwraps err into a *VersionConflictError if one is in the
// chain.
func AsVersionConflict(err error) (*VersionConflictError, bool) {
	var conflict *VersionConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
