package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ActionKind identifies one of the closed set of state-changing actions a
// device may queue while offline. New kinds require a schema bump in the
// persisted payload envelope.
type ActionKind string

const (
	// UpdateState requests a transition of the device's care state to the
	// target named in the payload (e.g. IDLE -> ACTIVE).
	UpdateState ActionKind = "UPDATE_STATE"

	// AckAlert acknowledges an active alert on the device.
	AckAlert ActionKind = "ACK_ALERT"

	// RecordNote attaches a free-form caregiver note to the device record.
	RecordNote ActionKind = "RECORD_NOTE"
)

// ActionStatus is the lifecycle state of a queued action. Only Status and
// RetryCount of a QueuedAction ever change after creation.
type ActionStatus string

const (
	StatusPending  ActionStatus = "pending"
	StatusSyncing  ActionStatus = "syncing"
	StatusSynced   ActionStatus = "synced"
	StatusFailed   ActionStatus = "failed"
	StatusConflict ActionStatus = "conflict"
)

// QueuedAction is a locally durable record of an intended state change that
// has not yet been confirmed by the remote state service.
//
// ID, Kind, Payload, ExpectedVersion and EnqueuedAt are immutable after the
// queue assigns them. The queue orders actions by EnqueuedAt ascending and
// this order is preserved end-to-end: later actions against the same device
// assume the version produced by earlier ones.
type QueuedAction struct {
	// ID is the unique identifier assigned at enqueue time (UUID).
	ID string `json:"id"`

	// Kind selects which payload type Payload holds and which remote
	// operation the replay coordinator will invoke.
	Kind ActionKind `json:"kind"`

	// Payload is the kind-specific action body.
	Payload ActionPayload `json:"-"`

	// ExpectedVersion is the remote state version the action was created
	// against; it anchors the optimistic-concurrency check during replay.
	ExpectedVersion int64 `json:"expected_version"`

	// EnqueuedAt is the local wall-clock time the action was accepted.
	EnqueuedAt time.Time `json:"enqueued_at"`

	// Vector optionally captures the enqueuing actor's version vector for
	// the entity at creation time. Set only for multi-actor entities; the
	// sync engine uses it to detect genuinely concurrent offline edits
	// before spending a network round-trip.
	Vector VersionVector `json:"vector,omitempty"`

	// RetryCount is the number of NETWORK_ERROR retries spent on this
	// action so far. Starts at 0.
	RetryCount int `json:"retry_count"`

	Status ActionStatus `json:"status"`
}

// ActionPayload is the closed tagged union of action bodies. Every payload
// reports the kind it belongs to so the persistence envelope and the replay
// coordinator never have to guess.
type ActionPayload interface {
	PayloadKind() ActionKind
}

// UpdateStatePayload carries the target care state for an UpdateState action.
type UpdateStatePayload struct {
	Target CareState `json:"target"`
}

func (UpdateStatePayload) PayloadKind() ActionKind { return UpdateState }

// AckAlertPayload identifies the alert being acknowledged.
type AckAlertPayload struct {
	AlertID string `json:"alert_id"`

	// Comment is an optional operator remark recorded with the ack.
	Comment string `json:"comment,omitempty"`
}

func (AckAlertPayload) PayloadKind() ActionKind { return AckAlert }

// RecordNotePayload carries a caregiver note.
type RecordNotePayload struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

func (RecordNotePayload) PayloadKind() ActionKind { return RecordNote }

// payloadSchemaVersion is bumped whenever the encoded shape of any payload
// changes incompatibly. DecodePayload refuses unknown schemas rather than
// guessing.
const payloadSchemaVersion = 1

// payloadEnvelope is the schema-versioned wire/persistence form of a payload.
type payloadEnvelope struct {
	Schema int             `json:"schema"`
	Kind   ActionKind      `json:"kind"`
	Data   json.RawMessage `json:"data"`
}

// EncodePayload serialises a payload into its schema-versioned envelope for
// persistence or transport.
func EncodePayload(p ActionPayload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("nil action payload")
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", p.PayloadKind(), err)
	}

	raw, err := json.Marshal(payloadEnvelope{
		Schema: payloadSchemaVersion,
		Kind:   p.PayloadKind(),
		Data:   data,
	})
	if err != nil {
		return nil, fmt.Errorf("encode payload envelope: %w", err)
	}

	return raw, nil
}

// DecodePayload restores a payload from its envelope. It returns an error
// for unknown kinds and unknown schema versions.
func DecodePayload(raw []byte) (ActionPayload, error) {
	var env payloadEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode payload envelope: %w", err)
	}
	if env.Schema != payloadSchemaVersion {
		return nil, fmt.Errorf("unsupported payload schema %d", env.Schema)
	}

	var (
		p   ActionPayload
		err error
	)
	switch env.Kind {
	case UpdateState:
		var body UpdateStatePayload
		err = json.Unmarshal(env.Data, &body)
		p = body
	case AckAlert:
		var body AckAlertPayload
		err = json.Unmarshal(env.Data, &body)
		p = body
	case RecordNote:
		var body RecordNotePayload
		err = json.Unmarshal(env.Data, &body)
		p = body
	default:
		return nil, fmt.Errorf("unknown action kind %q", env.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", env.Kind, err)
	}

	return p, nil
}
