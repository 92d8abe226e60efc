// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Telecare Labs

package service

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/internal/store"
	"github.com/telecare-labs/offsync/models"
)

// StateService is the server-side authority over versioned device state
// documents. Every applied transition advances the version by exactly one
// and leaves a journal entry; failed transitions change nothing.
type StateService interface {
	// GetState returns the current snapshot, or store.ErrStateNotFound.
	GetState(ctx context.Context, deviceID string) (models.StateSnapshot, error)

	// PutState creates or replaces the state document for a device.
	PutState(ctx context.Context, snapshot models.StateSnapshot) error

	// ApplyTransition validates and applies one transition request. On a
	// version conflict or an operation replay the current snapshot is
	// returned alongside the error so callers can report where the server
	// actually is.
	ApplyTransition(ctx context.Context, deviceID string, req models.TransitionRequest) (models.StateSnapshot, error)

	// Verify recomputes the journal digest over (FromVersion, ToVersion]
	// and compares it with the digest the client submitted.
	Verify(ctx context.Context, req models.VerifyRequest) (models.VerifyResponse, error)

	// SetBlocked toggles the policy override. While set, every transition
	// is rejected with ErrPolicyBlocked.
	SetBlocked(blocked bool)
	Blocked() bool
}

// allowedTransitions is the care-state rule table. A transition is valid only
// if the target is listed for the current state. RETIRED is terminal.
var allowedTransitions = map[models.CareState][]models.CareState{
	models.StateIdle:    {models.StateActive, models.StateRetired},
	models.StateActive:  {models.StatePaused, models.StateAlarm, models.StateIdle},
	models.StatePaused:  {models.StateActive, models.StateIdle},
	models.StateAlarm:   {models.StateActive, models.StateIdle},
	models.StateRetired: {},
}

type stateService struct {
	repo    store.StateRepository
	logger  *logger.Logger
	blocked atomic.Bool
}

// NewStateService returns a StateService over the given repository.
func NewStateService(repo store.StateRepository, log *logger.Logger) StateService {
	return &stateService{repo: repo, logger: log}
}

func (s *stateService) GetState(ctx context.Context, deviceID string) (models.StateSnapshot, error) {
	return s.repo.GetState(ctx, deviceID)
}

func (s *stateService) PutState(ctx context.Context, snapshot models.StateSnapshot) error {
	if snapshot.DeviceID == "" {
		return ErrNoDeviceID
	}
	if !knownState(snapshot.State) {
		return fmt.Errorf("state %q: %w", snapshot.State, ErrUnknownState)
	}

	return s.repo.PutState(ctx, snapshot)
}

func (s *stateService) ApplyTransition(ctx context.Context, deviceID string, req models.TransitionRequest) (models.StateSnapshot, error) {
	if s.blocked.Load() {
		return models.StateSnapshot{}, ErrPolicyBlocked
	}

	current, err := s.repo.GetState(ctx, deviceID)
	if err != nil {
		return models.StateSnapshot{}, err
	}

	// Replay and version checks run before rule validation: a replayed
	// operation was applied from a state the document has since left, so
	// its transition may no longer be legal, and it must still surface as
	// a conflict rather than a rule violation.
	replayed, err := s.repo.OperationApplied(ctx, deviceID, req.OperationID)
	if err != nil {
		return models.StateSnapshot{}, err
	}
	if replayed {
		return current, fmt.Errorf("operation %s: %w", req.OperationID, store.ErrOperationReplayed)
	}

	if req.ExpectedVersion != current.Version {
		return current, fmt.Errorf("expected version %d, have %d: %w",
			req.ExpectedVersion, current.Version, store.ErrVersionConflict)
	}

	newState, err := s.validate(current, req)
	if err != nil {
		return models.StateSnapshot{}, err
	}

	next, err := s.repo.ApplyTransition(ctx, deviceID, req, newState)
	if err != nil {
		return next, err
	}

	s.logger.Info().
		Str("device_id", deviceID).
		Str("operation_id", req.OperationID).
		Str("kind", string(req.Kind)).
		Int64("result_version", next.Version).
		Msg("transition applied")

	return next, nil
}

// validate checks the request against the rule table and returns the state
// the document should move to. An empty result means the state stays put and
// only the version advances.
func (s *stateService) validate(current models.StateSnapshot, req models.TransitionRequest) (models.CareState, error) {
	switch req.Kind {
	case models.UpdateState:
		if !knownState(req.NewState) {
			return "", fmt.Errorf("state %q: %w", req.NewState, ErrUnknownState)
		}
		for _, target := range allowedTransitions[current.State] {
			if target == req.NewState {
				return req.NewState, nil
			}
		}
		return "", fmt.Errorf("%s -> %s: %w", current.State, req.NewState, ErrTransitionNotAllowed)

	case models.AckAlert, models.RecordNote:
		// Version-advancing but state-preserving operations.
		return "", nil

	default:
		return "", fmt.Errorf("kind %q: %w", req.Kind, ErrUnknownKind)
	}
}

func (s *stateService) Verify(ctx context.Context, req models.VerifyRequest) (models.VerifyResponse, error) {
	entries, err := s.repo.JournalRange(ctx, req.DeviceID, req.FromVersion, req.ToVersion)
	if err != nil {
		return models.VerifyResponse{}, fmt.Errorf("journal range for device %s: %w", req.DeviceID, err)
	}

	// A session that adopted the server's version after a conflict spans
	// journal entries written by other actors. Digest only the entries the
	// client says it wrote, in journal order.
	if len(req.OperationIDs) > 0 {
		submitted := make(map[string]struct{}, len(req.OperationIDs))
		for _, id := range req.OperationIDs {
			submitted[id] = struct{}{}
		}
		kept := entries[:0]
		for _, entry := range entries {
			if _, ok := submitted[entry.OperationID]; ok {
				kept = append(kept, entry)
			}
		}
		entries = kept
	}

	digest := models.SessionDigest(entries)
	resp := models.VerifyResponse{
		Match:        digest == req.Digest,
		ServerDigest: digest,
	}
	if !resp.Match {
		s.logger.Warn().
			Str("device_id", req.DeviceID).
			Str("client_digest", req.Digest).
			Str("server_digest", digest).
			Msg("verification digest mismatch")
	}

	return resp, nil
}

func (s *stateService) SetBlocked(blocked bool) {
	s.blocked.Store(blocked)
	s.logger.Warn().Bool("blocked", blocked).Msg("policy override toggled")
}

func (s *stateService) Blocked() bool {
	return s.blocked.Load()
}

func knownState(state models.CareState) bool {
	_, ok := allowedTransitions[state]
	return ok
}
