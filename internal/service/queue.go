// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Telecare Labs

package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/internal/store"
	"github.com/telecare-labs/offsync/models"
)

type queueService struct {
	repo   store.QueueRepository
	logger *logger.Logger

	mu        sync.Mutex
	nextSubID int64
	listeners map[int64]QueueListener
}

// NewQueueService returns a QueueService over the given durable repository.
func NewQueueService(repo store.QueueRepository, log *logger.Logger) QueueService {
	return &queueService{
		repo:      repo,
		logger:    log,
		listeners: make(map[int64]QueueListener),
	}
}

func (s *queueService) Enqueue(ctx context.Context, payload models.ActionPayload, expectedVersion int64, vector models.VersionVector) (models.QueuedAction, error) {
	if payload == nil {
		return models.QueuedAction{}, ErrNilPayload
	}

	action := models.QueuedAction{
		ID:              uuid.NewString(),
		Kind:            payload.PayloadKind(),
		Payload:         payload,
		ExpectedVersion: expectedVersion,
		EnqueuedAt:      time.Now().UTC(),
		Vector:          vector.Clone(),
		Status:          models.StatusPending,
	}

	if err := s.repo.SaveAction(ctx, action); err != nil {
		return models.QueuedAction{}, fmt.Errorf("enqueue action %s: %w", action.ID, err)
	}

	s.logger.Debug().
		Str("action_id", action.ID).
		Str("kind", string(action.Kind)).
		Int64("expected_version", action.ExpectedVersion).
		Msg("action enqueued")

	s.notify(ctx)
	return action, nil
}

func (s *queueService) Dequeue(ctx context.Context, id string) error {
	if err := s.repo.DeleteAction(ctx, id); err != nil {
		return fmt.Errorf("dequeue action %s: %w", id, err)
	}

	s.notify(ctx)
	return nil
}

func (s *queueService) GetAll(ctx context.Context) ([]models.QueuedAction, error) {
	actions, err := s.repo.ListActions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list queued actions: %w", err)
	}

	return actions, nil
}

func (s *queueService) IncrementRetry(ctx context.Context, id string) error {
	if err := s.repo.IncrementRetry(ctx, id); err != nil {
		return fmt.Errorf("increment retry for action %s: %w", id, err)
	}

	s.notify(ctx)
	return nil
}

func (s *queueService) SetStatus(ctx context.Context, id string, status models.ActionStatus) error {
	if err := s.repo.SetStatus(ctx, id, status); err != nil {
		return fmt.Errorf("set status %s for action %s: %w", status, id, err)
	}

	s.notify(ctx)
	return nil
}

func (s *queueService) PendingCount(ctx context.Context) (int, error) {
	actions, err := s.repo.ListActions(ctx)
	if err != nil {
		return 0, fmt.Errorf("count pending actions: %w", err)
	}

	return len(actions), nil
}

func (s *queueService) OnChange(listener QueueListener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.listeners[id] = listener

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// notify delivers a fresh queue snapshot to every subscriber. Listener
// failures never surface to the mutating caller.
func (s *queueService) notify(ctx context.Context) {
	s.mu.Lock()
	if len(s.listeners) == 0 {
		s.mu.Unlock()
		return
	}
	subscribers := make([]QueueListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		subscribers = append(subscribers, l)
	}
	s.mu.Unlock()

	actions, err := s.repo.ListActions(ctx)
	if err != nil {
		s.logger.Err(err).Msg("failed to load queue snapshot for listeners")
		return
	}

	for _, l := range subscribers {
		l(actions)
	}
}
