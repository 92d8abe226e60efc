package models

import "time"

// ConflictRecord is the durable trace of a discarded local edit. It is
// written whenever replay detects a version conflict (or, in extended mode, a
// concurrent version-vector edit) and is never resolved automatically: the
// losing payload is kept here so a human can re-enter it instead of losing it
// silently.
type ConflictRecord struct {
	ID          string     `json:"id"`
	OperationID string     `json:"operation_id"`
	Kind        ActionKind `json:"kind"`

	// LocalPayload is the envelope-encoded payload of the discarded action.
	LocalPayload []byte `json:"local_payload"`

	// LocalVersion is the version the action was created against;
	// ServerVersion is where the server actually was at detection time.
	LocalVersion  int64 `json:"local_version"`
	ServerVersion int64 `json:"server_version"`

	DetectedAt time.Time `json:"detected_at"`
	Resolved   bool      `json:"resolved"`
}
