package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/telecare-labs/offsync/models"
)

// MemoryStateRepository keeps device states and the transition journal in
// process memory. It is the default backend when the server runs without a
// database DSN, and the workhorse of the test suite.
type MemoryStateRepository struct {
	mu       sync.RWMutex
	states   map[string]models.StateSnapshot
	journals map[string][]models.JournalEntry
	applied  map[string]struct{}
}

// NewMemoryStateRepository returns an empty in-memory repository.
func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{
		states:   make(map[string]models.StateSnapshot),
		journals: make(map[string][]models.JournalEntry),
		applied:  make(map[string]struct{}),
	}
}

func (r *MemoryStateRepository) GetState(ctx context.Context, deviceID string) (models.StateSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, ok := r.states[deviceID]
	if !ok {
		return models.StateSnapshot{}, ErrStateNotFound
	}

	snapshot.Vector = snapshot.Vector.Clone()
	return snapshot, nil
}

func (r *MemoryStateRepository) PutState(ctx context.Context, snapshot models.StateSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if snapshot.Version <= 0 {
		snapshot.Version = 1
	}
	if snapshot.UpdatedAt.IsZero() {
		snapshot.UpdatedAt = time.Now().UTC()
	}
	r.states[snapshot.DeviceID] = snapshot

	return nil
}

func (r *MemoryStateRepository) ApplyTransition(ctx context.Context, deviceID string, req models.TransitionRequest, newState models.CareState) (models.StateSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.states[deviceID]
	if !ok {
		return models.StateSnapshot{}, ErrStateNotFound
	}

	if _, replayed := r.applied[req.OperationID]; replayed {
		return current, fmt.Errorf("operation %s: %w", req.OperationID, ErrOperationReplayed)
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

	r.states[deviceID] = next
	r.applied[req.OperationID] = struct{}{}
	r.journals[deviceID] = append(r.journals[deviceID], models.JournalEntry{
		OperationID:   req.OperationID,
		Kind:          req.Kind,
		PayloadDigest: req.PayloadDigest,
		ResultVersion: next.Version,
	})

	return next, nil
}

func (r *MemoryStateRepository) OperationApplied(ctx context.Context, deviceID, operationID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.applied[operationID]
	return ok, nil
}

func (r *MemoryStateRepository) JournalRange(ctx context.Context, deviceID string, fromVersion, toVersion int64) ([]models.JournalEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []models.JournalEntry
	for _, e := range r.journals[deviceID] {
		if e.ResultVersion > fromVersion && e.ResultVersion <= toVersion {
			entries = append(entries, e)
		}
	}

	return entries, nil
}
