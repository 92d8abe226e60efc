package models

import "time"

// CareState is the business state of a monitored device as known by the
// remote state service. The set of legal transitions between states is owned
// by the server's rule table; this layer only carries the values.
type CareState string

const (
	StateIdle    CareState = "IDLE"
	StateActive  CareState = "ACTIVE"
	StatePaused  CareState = "PAUSED"
	StateAlarm   CareState = "ALARM"
	StateRetired CareState = "RETIRED"
)

// StateSnapshot is the authoritative device state plus its monotonically
// increasing version token. The sync engine fetches one snapshot at the start
// of a replay session and advances the version locally on each success.
type StateSnapshot struct {
	DeviceID  string    `json:"device_id"`
	State     CareState `json:"state"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`

	// Vector is the per-actor version vector of the device entity,
	// maintained by the server from the actor id submitted with each
	// transition. Empty for single-actor devices.
	Vector VersionVector `json:"vector,omitempty"`
}

// TransitionRequest is a single versioned state-change request submitted to
// the remote state service.
type TransitionRequest struct {
	// OperationID is the id of the queued action driving this request. The
	// server journals it, which makes replays detectable and lets the batch
	// verification endpoint recompute the client's digest.
	OperationID string `json:"operation_id"`

	Kind     ActionKind `json:"kind"`
	NewState CareState  `json:"new_state,omitempty"`

	// ExpectedVersion is the version the caller believes the server is at.
	// A mismatch yields a version conflict, never a partial apply.
	ExpectedVersion int64 `json:"expected_version"`

	// PayloadDigest is the hex SHA-256 of the action's encoded payload. The
	// server journals it alongside OperationID so batch verification can
	// recompute the client's session digest.
	PayloadDigest string `json:"payload_digest"`

	// Context carries kind-specific details the rule engine may consult
	// (alert id, note text, author).
	Context map[string]string `json:"context,omitempty"`
}

// TransitionResult is the success outcome of a transition request. All
// failure outcomes travel as typed errors.
type TransitionResult struct {
	NewVersion int64 `json:"new_version"`
}

// VerifyRequest asks the server to confirm it applied exactly the ordered set
// of operations the client believes it applied during one replay session.
type VerifyRequest struct {
	DeviceID    string `json:"device_id"`
	FromVersion int64  `json:"from_version"`
	ToVersion   int64  `json:"to_version"`

	// OperationIDs are the ids of the operations the session applied, in
	// apply order. The server digests only the journal entries carrying
	// these ids: a session that adopted the server's version after a
	// conflict spans journal entries it never wrote.
	OperationIDs []string `json:"operation_ids,omitempty"`

	// Digest is the hex SHA-256 over the ordered operation ids and payload
	// digests of the session's applied actions.
	Digest string `json:"digest"`
}

// VerifyResponse reports whether the server-side journal digest matches.
type VerifyResponse struct {
	Match        bool   `json:"match"`
	ServerDigest string `json:"server_digest"`
}
