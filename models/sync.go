package models

import "time"

// SyncSummary is the per-session replay result delivered to subscribers.
type SyncSummary struct {
	// Processed counts every queued action the session looked at, whether
	// dispatched or dropped by the admission policy.
	Processed int `json:"processed"`

	// Succeeded counts actions the server confirmed applied.
	Succeeded int `json:"succeeded"`

	// Failed counts actions dropped on non-retryable, non-conflict errors.
	Failed int `json:"failed"`

	// Discarded counts stale drops, dead-letters and version conflicts.
	Discarded int `json:"discarded"`

	// DigestMismatch is set when the post-batch verification digest did not
	// match the server journal, signalling partial application the
	// per-action outcomes missed.
	DigestMismatch bool `json:"digest_mismatch,omitempty"`

	// Halted names the outcome that stopped the batch early, leaving the
	// remaining actions queued for the next session. Empty when the whole
	// batch ran.
	Halted string `json:"halted,omitempty"`
}

// Halt reasons reported in SyncSummary.Halted.
const (
	HaltBlocked = "blocked"
	HaltNetwork = "network"
)

// SyncState is the small durable summary record kept next to the queue.
type SyncState struct {
	LastSyncAt    time.Time `json:"last_sync_at"`
	PendingCount  int       `json:"pending_count"`
	ConflictCount int       `json:"conflict_count"`
}
