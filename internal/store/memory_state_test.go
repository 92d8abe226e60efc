package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecare-labs/offsync/models"
)

func seedMemoryState(t *testing.T) *MemoryStateRepository {
	t.Helper()
	repo := NewMemoryStateRepository()
	err := repo.PutState(context.Background(), models.StateSnapshot{
		DeviceID: "dev-1",
		State:    models.StateIdle,
		Version:  5,
	})
	require.NoError(t, err)
	return repo
}

func TestMemoryStateRepository_GetState_NotFound(t *testing.T) {
	repo := NewMemoryStateRepository()

	_, err := repo.GetState(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestMemoryStateRepository_ApplyTransition(t *testing.T) {
	repo := seedMemoryState(t)
	ctx := context.Background()

	next, err := repo.ApplyTransition(ctx, "dev-1", models.TransitionRequest{
		OperationID:     "op-1",
		Kind:            models.UpdateState,
		NewState:        models.StateActive,
		ExpectedVersion: 5,
		PayloadDigest:   "digest-1",
		Context:         map[string]string{"actor": "client-a"},
	}, models.StateActive)
	require.NoError(t, err)

	assert.Equal(t, int64(6), next.Version)
	assert.Equal(t, models.StateActive, next.State)
	assert.Equal(t, int64(1), next.Vector["client-a"])

	stored, err := repo.GetState(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, next.Version, stored.Version)
	assert.Equal(t, next.State, stored.State)
}

func TestMemoryStateRepository_ApplyTransition_VersionConflict(t *testing.T) {
	repo := seedMemoryState(t)

	current, err := repo.ApplyTransition(context.Background(), "dev-1", models.TransitionRequest{
		OperationID:     "op-1",
		Kind:            models.UpdateState,
		ExpectedVersion: 4,
	}, models.StateActive)

	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Equal(t, int64(5), current.Version, "conflict must report where the server is")

	stored, err := repo.GetState(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), stored.Version, "failed transition must not change state")
	assert.Equal(t, models.StateIdle, stored.State)
}

func TestMemoryStateRepository_ApplyTransition_Replay(t *testing.T) {
	repo := seedMemoryState(t)
	ctx := context.Background()

	req := models.TransitionRequest{
		OperationID:     "op-1",
		Kind:            models.AckAlert,
		ExpectedVersion: 5,
		PayloadDigest:   "digest-1",
	}

	first, err := repo.ApplyTransition(ctx, "dev-1", req, "")
	require.NoError(t, err)
	assert.Equal(t, int64(6), first.Version)

	// Resubmitting the identical operation must not apply twice.
	req.ExpectedVersion = 6
	current, err := repo.ApplyTransition(ctx, "dev-1", req, "")
	assert.ErrorIs(t, err, ErrOperationReplayed)
	assert.Equal(t, int64(6), current.Version)

	applied, err := repo.OperationApplied(ctx, "dev-1", "op-1")
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = repo.OperationApplied(ctx, "dev-1", "op-9")
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestMemoryStateRepository_JournalRange(t *testing.T) {
	repo := seedMemoryState(t)
	ctx := context.Background()

	ops := []string{"op-1", "op-2", "op-3"}
	for i, op := range ops {
		_, err := repo.ApplyTransition(ctx, "dev-1", models.TransitionRequest{
			OperationID:     op,
			Kind:            models.RecordNote,
			ExpectedVersion: 5 + int64(i),
			PayloadDigest:   "digest-" + op,
		}, "")
		require.NoError(t, err)
	}

	entries, err := repo.JournalRange(ctx, "dev-1", 5, 8)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, ops[i], e.OperationID)
		assert.Equal(t, int64(6+i), e.ResultVersion)
	}

	partial, err := repo.JournalRange(ctx, "dev-1", 6, 7)
	require.NoError(t, err)
	require.Len(t, partial, 1)
	assert.Equal(t, "op-2", partial[0].OperationID)
}

func TestMemoryStateRepository_VectorAdvancesPerActor(t *testing.T) {
	repo := seedMemoryState(t)
	ctx := context.Background()

	for i, actor := range []string{"client-a", "client-a", "client-b"} {
		_, err := repo.ApplyTransition(ctx, "dev-1", models.TransitionRequest{
			OperationID:     string(rune('a' + i)),
			Kind:            models.AckAlert,
			ExpectedVersion: 5 + int64(i),
			Context:         map[string]string{"actor": actor},
		}, "")
		require.NoError(t, err)
	}

	snapshot, err := repo.GetState(ctx, "dev-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), snapshot.Vector["client-a"])
	assert.Equal(t, int64(1), snapshot.Vector["client-b"])
}
