// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Telecare Labs

package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/telecare-labs/offsync/internal/adapter"
	"github.com/telecare-labs/offsync/internal/connectivity"
	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/internal/mock"
	"github.com/telecare-labs/offsync/internal/store"
	"github.com/telecare-labs/offsync/models"
)

type engineFixture struct {
	engine  SyncEngine
	queue   QueueService
	storage *store.BoltStorage
	client  *mock.MockStateClient
	monitor *connectivity.Monitor
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	client := mock.NewMockStateClient(ctrl)

	storage, err := store.NewBoltStorage(filepath.Join(t.TempDir(), "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = storage.Close() })

	queue := NewQueueService(storage, logger.Nop())
	monitor := connectivity.NewMonitor(client, logger.Nop())
	monitor.SetStatus(connectivity.Online)

	return &engineFixture{
		engine:  NewSyncEngine(queue, storage, storage, client, monitor, "dev-1", "client-a", logger.Nop()),
		queue:   queue,
		storage: storage,
		client:  client,
		monitor: monitor,
	}
}

// enqueue writes an action straight into storage with a deterministic id and
// spacing, so batch order in tests is stable.
func (f *engineFixture) enqueue(t *testing.T, id string, expectedVersion int64, seq int) models.QueuedAction {
	t.Helper()

	action := models.QueuedAction{
		ID:              id,
		Kind:            models.UpdateState,
		Payload:         models.UpdateStatePayload{Target: models.StateActive},
		ExpectedVersion: expectedVersion,
		EnqueuedAt:      time.Date(2026, 8, 26, 10, 0, seq, 0, time.UTC),
		Status:          models.StatusPending,
	}
	require.NoError(t, f.storage.SaveAction(context.Background(), action))
	return action
}

func snapshotAt(version int64) models.StateSnapshot {
	return models.StateSnapshot{
		DeviceID: "dev-1",
		State:    models.StateIdle,
		Version:  version,
	}
}

func TestSyncEngine_Offline(t *testing.T) {
	f := newEngineFixture(t)
	f.monitor.SetStatus(connectivity.Offline)

	summary, err := f.engine.Sync(context.Background())
	assert.ErrorIs(t, err, ErrOffline)
	assert.Zero(t, summary)
}

func TestSyncEngine_OverlappingSessionSkipped(t *testing.T) {
	f := newEngineFixture(t)

	engine := f.engine.(*syncEngine)
	engine.running.Store(true)
	defer engine.running.Store(false)

	summary, err := f.engine.Sync(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary)
}

func TestSyncEngine_FetchStateFailureAborts(t *testing.T) {
	f := newEngineFixture(t)
	f.enqueue(t, "action-1", 5, 0)

	f.client.EXPECT().FetchState(gomock.Any()).
		Return(models.StateSnapshot{}, adapter.ErrNetwork)

	summary, err := f.engine.Sync(context.Background())
	assert.ErrorIs(t, err, adapter.ErrNetwork)
	assert.Zero(t, summary)

	// The batch was never touched.
	actions, err := f.queue.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, actions, 1)
}

func TestSyncEngine_ReplaysInQueueOrder(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.enqueue(t, "action-1", 5, 0)
	f.enqueue(t, "action-2", 6, 1)
	f.enqueue(t, "action-3", 7, 2)

	f.client.EXPECT().FetchState(gomock.Any()).Return(snapshotAt(5), nil)

	var dispatched []string
	submit := func(_ context.Context, req models.TransitionRequest) (models.TransitionResult, error) {
		dispatched = append(dispatched, req.OperationID)
		return models.TransitionResult{NewVersion: req.ExpectedVersion + 1}, nil
	}
	gomock.InOrder(
		f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).DoAndReturn(submit),
		f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).DoAndReturn(submit),
		f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).DoAndReturn(submit),
	)
	f.client.EXPECT().VerifyBatch(gomock.Any(), gomock.Any()).
		Return(models.VerifyResponse{Match: true}, nil)

	summary, err := f.engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSummary{Processed: 3, Succeeded: 3}, summary)
	assert.Equal(t, []string{"action-1", "action-2", "action-3"}, dispatched)

	actions, err := f.queue.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestSyncEngine_DispatchesWithSessionVersion(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.enqueue(t, "action-1", 5, 0)
	f.enqueue(t, "action-2", 6, 1)

	f.client.EXPECT().FetchState(gomock.Any()).Return(snapshotAt(5), nil)

	var versions []int64
	gomock.InOrder(
		f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.TransitionRequest) (models.TransitionResult, error) {
				versions = append(versions, req.ExpectedVersion)
				return models.TransitionResult{}, adapter.ErrInvalidTransition
			}),
		// The first action failed without moving the server, so the second
		// one must go out anchored at version 5, not at the version it was
		// enqueued against.
		f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req models.TransitionRequest) (models.TransitionResult, error) {
				versions = append(versions, req.ExpectedVersion)
				return models.TransitionResult{NewVersion: 6}, nil
			}),
	)
	f.client.EXPECT().VerifyBatch(gomock.Any(), gomock.Any()).
		Return(models.VerifyResponse{Match: true}, nil)

	summary, err := f.engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSummary{Processed: 2, Succeeded: 1, Failed: 1}, summary)
	assert.Equal(t, []int64{5, 5}, versions)
}

func TestSyncEngine_StaleActionDiscardedWithoutDispatch(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.enqueue(t, "action-1", 5, 0)

	// Server is already past the anchored version. No SubmitTransition
	// expectation is registered: any dispatch fails the test.
	f.client.EXPECT().FetchState(gomock.Any()).Return(snapshotAt(10), nil)

	summary, err := f.engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSummary{Processed: 1, Discarded: 1}, summary)

	conflicts, err := f.storage.ListConflicts(ctx, false)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "action-1", conflicts[0].OperationID)
	assert.Equal(t, int64(5), conflicts[0].LocalVersion)
	assert.Equal(t, int64(10), conflicts[0].ServerVersion)

	actions, err := f.queue.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestSyncEngine_DeadLettersSpentRetryBudget(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	action := f.enqueue(t, "action-1", 5, 0)
	for i := 0; i < MaxRetries; i++ {
		require.NoError(t, f.storage.IncrementRetry(ctx, action.ID))
	}

	f.client.EXPECT().FetchState(gomock.Any()).Return(snapshotAt(5), nil)

	summary, err := f.engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSummary{Processed: 1, Discarded: 1}, summary)

	// Dead-lettering removes the action without a conflict record.
	conflicts, err := f.storage.ListConflicts(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	actions, err := f.queue.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestSyncEngine_StaleSpentActionStillRecordsConflict(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	action := f.enqueue(t, "action-1", 3, 0)
	for i := 0; i < MaxRetries; i++ {
		require.NoError(t, f.storage.IncrementRetry(ctx, action.ID))
	}

	// Stale and out of retry budget at once: staleness wins, so the edit
	// lands in the conflict log instead of vanishing as a dead letter.
	f.client.EXPECT().FetchState(gomock.Any()).Return(snapshotAt(5), nil)

	summary, err := f.engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSummary{Processed: 1, Discarded: 1}, summary)

	conflicts, err := f.storage.ListConflicts(ctx, false)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "action-1", conflicts[0].OperationID)
	assert.Equal(t, int64(5), conflicts[0].ServerVersion)
}

func TestSyncEngine_BlockedHaltsBatch(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.enqueue(t, "action-1", 5, 0)
	f.enqueue(t, "action-2", 6, 1)
	f.enqueue(t, "action-3", 7, 2)

	f.client.EXPECT().FetchState(gomock.Any()).Return(snapshotAt(5), nil)
	gomock.InOrder(
		f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).
			Return(models.TransitionResult{NewVersion: 6}, nil),
		f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).
			Return(models.TransitionResult{}, adapter.ErrBlocked),
	)
	f.client.EXPECT().VerifyBatch(gomock.Any(), gomock.Any()).
		Return(models.VerifyResponse{Match: true}, nil)

	summary, err := f.engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSummary{Processed: 2, Succeeded: 1, Halted: models.HaltBlocked}, summary)

	// The blocked action and everything after it stay queued.
	actions, err := f.queue.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "action-2", actions[0].ID)
	assert.Equal(t, models.StatusPending, actions[0].Status)
	assert.Equal(t, "action-3", actions[1].ID)
}

func TestSyncEngine_NetworkFailureHaltsAndChargesRetry(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.enqueue(t, "action-1", 5, 0)

	f.client.EXPECT().FetchState(gomock.Any()).Return(snapshotAt(5), nil)
	f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).
		Return(models.TransitionResult{}, adapter.ErrNetwork)

	summary, err := f.engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSummary{Processed: 1, Halted: models.HaltNetwork}, summary)

	got, err := f.storage.GetAction(ctx, "action-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.RetryCount)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestSyncEngine_VersionConflictRecordsAndAdoptsServerVersion(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.enqueue(t, "action-1", 5, 0)
	f.enqueue(t, "action-2", 9, 1)

	f.client.EXPECT().FetchState(gomock.Any()).Return(snapshotAt(5), nil)
	gomock.InOrder(
		f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).
			Return(models.TransitionResult{}, &adapter.VersionConflictError{CurrentVersion: 9}),
		// The session adopted version 9, so the second action is not
		// treated as stale and still dispatches.
		f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).
			Return(models.TransitionResult{NewVersion: 10}, nil),
	)
	f.client.EXPECT().VerifyBatch(gomock.Any(), gomock.Any()).
		Return(models.VerifyResponse{Match: true}, nil)

	summary, err := f.engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSummary{Processed: 2, Succeeded: 1, Discarded: 1}, summary)

	conflicts, err := f.storage.ListConflicts(ctx, false)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "action-1", conflicts[0].OperationID)
	assert.Equal(t, int64(9), conflicts[0].ServerVersion)
}

func TestSyncEngine_ConcurrentVectorEditDiscarded(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	action := models.QueuedAction{
		ID:              "action-1",
		Kind:            models.UpdateState,
		Payload:         models.UpdateStatePayload{Target: models.StateActive},
		ExpectedVersion: 5,
		EnqueuedAt:      time.Now().UTC(),
		Vector:          models.VersionVector{"client-b": 1},
		Status:          models.StatusPending,
	}
	require.NoError(t, f.storage.SaveAction(ctx, action))

	snapshot := snapshotAt(5)
	snapshot.Vector = models.VersionVector{"client-c": 2}
	f.client.EXPECT().FetchState(gomock.Any()).Return(snapshot, nil)

	summary, err := f.engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSummary{Processed: 1, Discarded: 1}, summary)

	conflicts, err := f.storage.ListConflicts(ctx, false)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "action-1", conflicts[0].OperationID)
}

func TestSyncEngine_SemanticRejectionDropsAction(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.enqueue(t, "action-1", 5, 0)

	f.client.EXPECT().FetchState(gomock.Any()).Return(snapshotAt(5), nil)
	f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).
		Return(models.TransitionResult{}, adapter.ErrInvalidTransition)

	summary, err := f.engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSummary{Processed: 1, Failed: 1}, summary)

	// Semantic rejections are not conflicts: nothing to re-enter.
	conflicts, err := f.storage.ListConflicts(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, conflicts)

	actions, err := f.queue.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestSyncEngine_VerifiesSessionDigest(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	action := f.enqueue(t, "action-1", 5, 0)

	digest, err := models.PayloadDigestOf(action.Payload)
	require.NoError(t, err)
	wantDigest := models.SessionDigest([]models.JournalEntry{{
		OperationID:   action.ID,
		Kind:          action.Kind,
		PayloadDigest: digest,
		ResultVersion: 6,
	}})

	f.client.EXPECT().FetchState(gomock.Any()).Return(snapshotAt(5), nil)
	f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).
		Return(models.TransitionResult{NewVersion: 6}, nil)
	f.client.EXPECT().VerifyBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.VerifyRequest) (models.VerifyResponse, error) {
			assert.Equal(t, "dev-1", req.DeviceID)
			assert.Equal(t, int64(5), req.FromVersion)
			assert.Equal(t, int64(6), req.ToVersion)
			assert.Equal(t, wantDigest, req.Digest)
			return models.VerifyResponse{Match: true, ServerDigest: req.Digest}, nil
		})

	summary, err := f.engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSummary{Processed: 1, Succeeded: 1}, summary)
	assert.False(t, summary.DigestMismatch)
}

func TestSyncEngine_VerifyCoversOnlyAppliedOperations(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.enqueue(t, "action-1", 5, 0)
	action2 := f.enqueue(t, "action-2", 8, 1)

	digest, err := models.PayloadDigestOf(action2.Payload)
	require.NoError(t, err)
	wantDigest := models.SessionDigest([]models.JournalEntry{{
		OperationID:   action2.ID,
		Kind:          action2.Kind,
		PayloadDigest: digest,
		ResultVersion: 9,
	}})

	f.client.EXPECT().FetchState(gomock.Any()).Return(snapshotAt(5), nil)
	gomock.InOrder(
		f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).
			Return(models.TransitionResult{}, &adapter.VersionConflictError{CurrentVersion: 8}),
		f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).
			Return(models.TransitionResult{NewVersion: 9}, nil),
	)
	// Versions 6..8 of the range belong to another actor's edits: the
	// verify request must digest only what this session applied.
	f.client.EXPECT().VerifyBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.VerifyRequest) (models.VerifyResponse, error) {
			assert.Equal(t, int64(5), req.FromVersion)
			assert.Equal(t, int64(9), req.ToVersion)
			assert.Equal(t, []string{"action-2"}, req.OperationIDs)
			assert.Equal(t, wantDigest, req.Digest)
			return models.VerifyResponse{Match: true, ServerDigest: req.Digest}, nil
		})

	summary, err := f.engine.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SyncSummary{Processed: 2, Succeeded: 1, Discarded: 1}, summary)
	assert.False(t, summary.DigestMismatch)
}

func TestSyncEngine_DigestMismatchFlagged(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.enqueue(t, "action-1", 5, 0)

	f.client.EXPECT().FetchState(gomock.Any()).Return(snapshotAt(5), nil)
	f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).
		Return(models.TransitionResult{NewVersion: 6}, nil)
	f.client.EXPECT().VerifyBatch(gomock.Any(), gomock.Any()).
		Return(models.VerifyResponse{Match: false, ServerDigest: "other"}, nil)

	summary, err := f.engine.Sync(ctx)
	require.NoError(t, err)
	assert.True(t, summary.DigestMismatch)
}

func TestSyncEngine_VerifyTransportErrorIsNotAMismatch(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.enqueue(t, "action-1", 5, 0)

	f.client.EXPECT().FetchState(gomock.Any()).Return(snapshotAt(5), nil)
	f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).
		Return(models.TransitionResult{NewVersion: 6}, nil)
	f.client.EXPECT().VerifyBatch(gomock.Any(), gomock.Any()).
		Return(models.VerifyResponse{}, adapter.ErrNetwork)

	summary, err := f.engine.Sync(ctx)
	require.NoError(t, err)
	assert.False(t, summary.DigestMismatch)
}

func TestSyncEngine_PersistsSyncState(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	f.enqueue(t, "action-1", 5, 0) // succeeds
	f.enqueue(t, "action-2", 3, 1) // stale, becomes an unresolved conflict

	f.client.EXPECT().FetchState(gomock.Any()).Return(snapshotAt(5), nil)
	f.client.EXPECT().SubmitTransition(gomock.Any(), gomock.Any()).
		Return(models.TransitionResult{NewVersion: 6}, nil)
	f.client.EXPECT().VerifyBatch(gomock.Any(), gomock.Any()).
		Return(models.VerifyResponse{Match: true}, nil)

	_, err := f.engine.Sync(ctx)
	require.NoError(t, err)

	state, err := f.storage.GetSyncState(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, state.PendingCount)
	assert.Equal(t, 1, state.ConflictCount)
	assert.False(t, state.LastSyncAt.IsZero())
}

func TestSyncEngine_NotifiesSubscribers(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	var received []models.SyncSummary
	unsubscribe := f.engine.OnSyncComplete(func(s models.SyncSummary) {
		received = append(received, s)
	})

	f.client.EXPECT().FetchState(gomock.Any()).Return(snapshotAt(5), nil).Times(2)

	_, err := f.engine.Sync(ctx)
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, models.SyncSummary{}, received[0])

	unsubscribe()
	_, err = f.engine.Sync(ctx)
	require.NoError(t, err)
	assert.Len(t, received, 1)
}
