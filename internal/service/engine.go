// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Telecare Labs

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/telecare-labs/offsync/internal/adapter"
	"github.com/telecare-labs/offsync/internal/connectivity"
	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/internal/store"
	"github.com/telecare-labs/offsync/models"
)

// MaxRetries is the network-failure retry budget of a queued action. An
// action that has already spent its budget is dead-lettered on the next
// encounter without another network attempt.
const MaxRetries = 3

type syncEngine struct {
	queue     QueueService
	conflicts store.ConflictRepository
	summary   store.SummaryRepository
	client    adapter.StateClient
	monitor   *connectivity.Monitor
	coord     *replayCoordinator
	logger    *logger.Logger
	deviceID  string

	// running is the single-session guard. It is the only mutual exclusion
	// the replay path needs: dispatch inside a session is sequential and
	// the queue repositories are internally atomic.
	running atomic.Bool

	mu        sync.Mutex
	nextSubID int64
	listeners map[int64]SyncListener
}

// NewSyncEngine wires a replay engine over the client-side repositories and
// the remote state client. actorID identifies this client in version
// vectors and in the transition context.
func NewSyncEngine(
	queue QueueService,
	conflicts store.ConflictRepository,
	summary store.SummaryRepository,
	client adapter.StateClient,
	monitor *connectivity.Monitor,
	deviceID string,
	actorID string,
	log *logger.Logger,
) SyncEngine {
	return &syncEngine{
		queue:     queue,
		conflicts: conflicts,
		summary:   summary,
		client:    client,
		monitor:   monitor,
		coord:     newReplayCoordinator(actorID),
		logger:    log,
		deviceID:  deviceID,
		listeners: make(map[int64]SyncListener),
	}
}

// Sync runs one replay session over a fixed FIFO snapshot of the queue.
// Actions enqueued while the session runs wait for the next one. A batch
// halted by a policy block or a transport failure reports the reason in
// the summary; only bootstrap and storage failures return an error.
func (e *syncEngine) Sync(ctx context.Context) (models.SyncSummary, error) {
	if !e.running.CompareAndSwap(false, true) {
		e.logger.Debug().Msg("replay session already running, skipping")
		return models.SyncSummary{}, nil
	}
	defer e.running.Store(false)

	if e.monitor.Status() == connectivity.Offline {
		return models.SyncSummary{}, ErrOffline
	}

	snapshot, err := e.client.FetchState(ctx)
	if err != nil {
		return models.SyncSummary{}, fmt.Errorf("fetch remote state: %w", err)
	}

	batch, err := e.queue.GetAll(ctx)
	if err != nil {
		return models.SyncSummary{}, fmt.Errorf("snapshot queue: %w", err)
	}

	var (
		summary        models.SyncSummary
		applied        []models.JournalEntry
		sessionVersion = snapshot.Version
		fromVersion    = snapshot.Version
	)

	for _, action := range batch {
		summary.Processed++

		outcome, entry, err := e.replayOne(ctx, action, snapshot, sessionVersion)
		switch outcome {
		case outcomeSucceeded:
			summary.Succeeded++
			sessionVersion = entry.ResultVersion
			applied = append(applied, entry)
		case outcomeDiscarded:
			summary.Discarded++
			// A version conflict reveals where the server actually is.
			if conflict, ok := adapter.AsVersionConflict(err); ok {
				sessionVersion = conflict.CurrentVersion
			}
		case outcomeFailed:
			summary.Failed++
		case outcomeHalted:
			summary.Halted = haltReason(err)
		case outcomeAborted:
			return summary, err
		}

		if outcome == outcomeHalted {
			break
		}
	}

	if len(applied) > 0 {
		summary.DigestMismatch = e.verifySession(ctx, fromVersion, sessionVersion, applied)
	}

	if err = e.persistSyncState(ctx); err != nil {
		return summary, err
	}

	e.logger.Info().
		Int("processed", summary.Processed).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Int("discarded", summary.Discarded).
		Str("halted", summary.Halted).
		Bool("digest_mismatch", summary.DigestMismatch).
		Msg("replay session finished")

	e.notify(summary)
	return summary, nil
}

// replayOutcome classifies what a single action did to the session.
type replayOutcome int

const (
	outcomeSucceeded replayOutcome = iota
	outcomeDiscarded
	outcomeFailed
	// outcomeHalted stops the batch, leaving this and all later actions
	// queued.
	outcomeHalted
	// outcomeAborted ends the session with a storage error.
	outcomeAborted
)

// replayOne applies the admission policy to one action and, if admitted,
// dispatches it. The returned journal entry is meaningful only for
// outcomeSucceeded; the returned error only for outcomeDiscarded (version
// conflict), outcomeHalted and outcomeAborted.
func (e *syncEngine) replayOne(ctx context.Context, action models.QueuedAction, snapshot models.StateSnapshot, sessionVersion int64) (replayOutcome, models.JournalEntry, error) {
	log := e.logger.With().Str("action_id", action.ID).Str("kind", string(action.Kind)).Logger()

	// Admission: anchored at a version the server has moved past. The
	// server would reject it anyway, so drop it without a round-trip and
	// keep the edit in the conflict log. Staleness outranks the retry
	// budget: a stale action always leaves a conflict record.
	if action.ExpectedVersion < sessionVersion {
		log.Warn().
			Int64("expected_version", action.ExpectedVersion).
			Int64("session_version", sessionVersion).
			Msg("stale action discarded")
		if err := e.discardAsConflict(ctx, action, sessionVersion); err != nil {
			return outcomeAborted, models.JournalEntry{}, err
		}
		return outcomeDiscarded, models.JournalEntry{}, nil
	}

	// Admission: spent retry budget. No network attempt.
	if action.RetryCount >= MaxRetries {
		log.Warn().Int("retry_count", action.RetryCount).Msg("retry budget spent, dead-lettering action")
		if err := e.queue.Dequeue(ctx, action.ID); err != nil {
			return outcomeAborted, models.JournalEntry{}, err
		}
		return outcomeDiscarded, models.JournalEntry{}, nil
	}

	// Admission: genuinely concurrent offline edit of a multi-actor entity.
	if action.Vector.Concurrent(snapshot.Vector) {
		log.Warn().Msg("concurrent edit detected by version vector, discarding")
		if err := e.discardAsConflict(ctx, action, snapshot.Version); err != nil {
			return outcomeAborted, models.JournalEntry{}, err
		}
		return outcomeDiscarded, models.JournalEntry{}, nil
	}

	// The server is dispatched against the version the session knows it
	// holds right now, not the version the action was created against.
	req, err := e.coord.BuildRequest(action, sessionVersion)
	if err != nil {
		log.Err(err).Msg("action cannot be dispatched, dropping")
		if dequeueErr := e.queue.Dequeue(ctx, action.ID); dequeueErr != nil {
			return outcomeAborted, models.JournalEntry{}, dequeueErr
		}
		return outcomeFailed, models.JournalEntry{}, nil
	}

	if err = e.queue.SetStatus(ctx, action.ID, models.StatusSyncing); err != nil {
		return outcomeAborted, models.JournalEntry{}, err
	}

	result, err := e.client.SubmitTransition(ctx, req)
	switch {
	case err == nil:
		if err = e.queue.Dequeue(ctx, action.ID); err != nil {
			return outcomeAborted, models.JournalEntry{}, err
		}
		log.Debug().Int64("new_version", result.NewVersion).Msg("action applied")
		return outcomeSucceeded, models.JournalEntry{
			OperationID:   action.ID,
			Kind:          action.Kind,
			PayloadDigest: req.PayloadDigest,
			ResultVersion: result.NewVersion,
		}, nil

	case isVersionConflict(err):
		conflict, _ := adapter.AsVersionConflict(err)
		log.Warn().
			Int64("dispatched_version", sessionVersion).
			Int64("server_version", conflict.CurrentVersion).
			Msg("version conflict, server edit wins")
		if err = e.discardAsConflict(ctx, action, conflict.CurrentVersion); err != nil {
			return outcomeAborted, models.JournalEntry{}, err
		}
		return outcomeDiscarded, models.JournalEntry{}, fmt.Errorf("action %s: %w", action.ID, conflict)

	case errors.Is(err, adapter.ErrBlocked):
		log.Warn().Msg("policy override active, halting batch")
		if statusErr := e.queue.SetStatus(ctx, action.ID, models.StatusPending); statusErr != nil {
			return outcomeAborted, models.JournalEntry{}, statusErr
		}
		return outcomeHalted, models.JournalEntry{}, err

	case errors.Is(err, adapter.ErrNetwork):
		log.Warn().Int("retry_count", action.RetryCount+1).Msg("network failure, halting batch")
		if retryErr := e.queue.IncrementRetry(ctx, action.ID); retryErr != nil {
			return outcomeAborted, models.JournalEntry{}, retryErr
		}
		if statusErr := e.queue.SetStatus(ctx, action.ID, models.StatusPending); statusErr != nil {
			return outcomeAborted, models.JournalEntry{}, statusErr
		}
		return outcomeHalted, models.JournalEntry{}, err

	default:
		// INVALID_TRANSITION, UNKNOWN_ACTION and anything else semantic.
		// A retry cannot repair these, so the action is dropped.
		log.Err(err).Msg("action rejected by server, dropping")
		if dequeueErr := e.queue.Dequeue(ctx, action.ID); dequeueErr != nil {
			return outcomeAborted, models.JournalEntry{}, dequeueErr
		}
		return outcomeFailed, models.JournalEntry{}, nil
	}
}

// discardAsConflict moves an action from the queue into the durable conflict
// log. The record is written before the action is removed so a crash in
// between never loses the local edit.
func (e *syncEngine) discardAsConflict(ctx context.Context, action models.QueuedAction, serverVersion int64) error {
	payload, err := models.EncodePayload(action.Payload)
	if err != nil {
		return fmt.Errorf("encode conflicting payload of action %s: %w", action.ID, err)
	}

	record := models.ConflictRecord{
		ID:            uuid.NewString(),
		OperationID:   action.ID,
		Kind:          action.Kind,
		LocalPayload:  payload,
		LocalVersion:  action.ExpectedVersion,
		ServerVersion: serverVersion,
		DetectedAt:    time.Now().UTC(),
	}
	if err = e.conflicts.SaveConflict(ctx, record); err != nil {
		return fmt.Errorf("save conflict record for action %s: %w", action.ID, err)
	}

	return e.queue.Dequeue(ctx, action.ID)
}

// verifySession asks the server to confirm that the journal entries of the
// operations this session applied match what the session believes it
// applied. The operation ids are sent along because a mid-batch conflict
// adoption leaves foreign entries inside (fromVersion, toVersion] that the
// server must not digest. Returns true when the digests are known to
// disagree.
func (e *syncEngine) verifySession(ctx context.Context, fromVersion, toVersion int64, applied []models.JournalEntry) bool {
	digest := models.SessionDigest(applied)

	operationIDs := make([]string, 0, len(applied))
	for _, entry := range applied {
		operationIDs = append(operationIDs, entry.OperationID)
	}

	resp, err := e.client.VerifyBatch(ctx, models.VerifyRequest{
		DeviceID:     e.deviceID,
		FromVersion:  fromVersion,
		ToVersion:    toVersion,
		OperationIDs: operationIDs,
		Digest:       digest,
	})
	if err != nil {
		e.logger.Err(err).Msg("batch verification unavailable")
		return false
	}
	if !resp.Match {
		e.logger.Error().
			Str("client_digest", digest).
			Str("server_digest", resp.ServerDigest).
			Msg("batch verification digest mismatch")
		return true
	}

	return false
}

func (e *syncEngine) persistSyncState(ctx context.Context) error {
	pending, err := e.queue.PendingCount(ctx)
	if err != nil {
		return err
	}
	conflictCount, err := e.conflicts.CountUnresolvedConflicts(ctx)
	if err != nil {
		return fmt.Errorf("count unresolved conflicts: %w", err)
	}

	state := models.SyncState{
		LastSyncAt:    time.Now().UTC(),
		PendingCount:  pending,
		ConflictCount: conflictCount,
	}
	if err = e.summary.SaveSyncState(ctx, state); err != nil {
		return fmt.Errorf("persist sync state: %w", err)
	}

	return nil
}

func (e *syncEngine) OnSyncComplete(listener SyncListener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextSubID
	e.nextSubID++
	e.listeners[id] = listener

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

func (e *syncEngine) notify(summary models.SyncSummary) {
	e.mu.Lock()
	subscribers := make([]SyncListener, 0, len(e.listeners))
	for _, l := range e.listeners {
		subscribers = append(subscribers, l)
	}
	e.mu.Unlock()

	for _, l := range subscribers {
		l(summary)
	}
}

func isVersionConflict(err error) bool {
	_, ok := adapter.AsVersionConflict(err)
	return ok
}

func haltReason(err error) string {
	if errors.Is(err, adapter.ErrBlocked) {
		return models.HaltBlocked
	}
	return models.HaltNetwork
}
