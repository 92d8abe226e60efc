package store

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/models"
)

const selectConflictsSQL = `SELECT id, operation_id, kind, local_payload, local_version, server_version, detected_at, resolved FROM conflicts`

var conflictColumns = []string{
	"id", "operation_id", "kind", "local_payload",
	"local_version", "server_version", "detected_at", "resolved",
}

func newTestConflictRepo(t *testing.T, db *sql.DB) ConflictRepository {
	t.Helper()
	return NewSQLiteConflictRepository(newDBFromSQL(db), logger.Nop())
}

func testConflict(id string, detectedAt time.Time) models.ConflictRecord {
	return models.ConflictRecord{
		ID:            id,
		OperationID:   "action-" + id,
		Kind:          models.UpdateState,
		LocalPayload:  []byte(`{"schema":1}`),
		LocalVersion:  5,
		ServerVersion: 7,
		DetectedAt:    detectedAt,
	}
}

func TestSQLiteConflictRepository_SaveConflict(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConflictRepo(t, db)

	now := time.Now().UTC()
	record := testConflict("conflict-1", now)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO conflicts (id,operation_id,kind,local_payload,local_version,server_version,detected_at,resolved) VALUES (?,?,?,?,?,?,?,?)`)).
		WithArgs("conflict-1", "action-conflict-1", "UPDATE_STATE", record.LocalPayload,
			int64(5), int64(7), now, false).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SaveConflict(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteConflictRepository_ListConflicts_UnresolvedOnly(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConflictRepo(t, db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(selectConflictsSQL + ` WHERE resolved = ? ORDER BY detected_at ASC`)).
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows(conflictColumns).
			AddRow("conflict-1", "action-1", "UPDATE_STATE", []byte(`{}`), int64(5), int64(7), now, false))

	records, err := repo.ListConflicts(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "conflict-1", records[0].ID)
	assert.Equal(t, models.UpdateState, records[0].Kind)
	assert.Equal(t, int64(7), records[0].ServerVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteConflictRepository_ListConflicts_IncludeResolved(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConflictRepo(t, db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(selectConflictsSQL + ` ORDER BY detected_at ASC`)).
		WillReturnRows(sqlmock.NewRows(conflictColumns).
			AddRow("conflict-1", "action-1", "UPDATE_STATE", []byte(`{}`), int64(5), int64(7), now, true).
			AddRow("conflict-2", "action-2", "ACK_ALERT", []byte(`{}`), int64(6), int64(8), now.Add(time.Second), false))

	records, err := repo.ListConflicts(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].Resolved)
	assert.False(t, records[1].Resolved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteConflictRepository_ResolveConflict(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConflictRepo(t, db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE conflicts SET resolved = ? WHERE id = ?`)).
		WithArgs(true, "conflict-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.ResolveConflict(context.Background(), "conflict-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteConflictRepository_ResolveConflict_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConflictRepo(t, db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE conflicts SET resolved = ? WHERE id = ?`)).
		WithArgs(true, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ResolveConflict(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrConflictNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteConflictRepository_CountUnresolvedConflicts(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestConflictRepo(t, db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM conflicts WHERE resolved = ?`)).
		WithArgs(false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountUnresolvedConflicts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteSummaryRepository_SaveSyncState(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewSQLiteSummaryRepository(newDBFromSQL(db), logger.Nop())

	now := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO sync_state (id, last_sync_at, pending_count, conflict_count)`)).
		WithArgs(now, 4, 1).
		WillReturnResult(sqlmock.NewResult(1, 1))

	state := models.SyncState{LastSyncAt: now, PendingCount: 4, ConflictCount: 1}
	require.NoError(t, repo.SaveSyncState(context.Background(), state))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteSummaryRepository_GetSyncState(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewSQLiteSummaryRepository(newDBFromSQL(db), logger.Nop())

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT last_sync_at, pending_count, conflict_count FROM sync_state WHERE id = 1`)).
		WillReturnRows(sqlmock.NewRows([]string{"last_sync_at", "pending_count", "conflict_count"}).
			AddRow(now, 4, 1))

	state, err := repo.GetSyncState(context.Background())
	require.NoError(t, err)
	assert.True(t, now.Equal(state.LastSyncAt))
	assert.Equal(t, 4, state.PendingCount)
	assert.Equal(t, 1, state.ConflictCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteSummaryRepository_GetSyncState_NoRowIsZero(t *testing.T) {
	db, mock := newTestDB(t)
	repo := NewSQLiteSummaryRepository(newDBFromSQL(db), logger.Nop())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT last_sync_at, pending_count, conflict_count FROM sync_state`)).
		WillReturnError(sql.ErrNoRows)

	state, err := repo.GetSyncState(context.Background())
	require.NoError(t, err)
	assert.Zero(t, state)
	assert.NoError(t, mock.ExpectationsWereMet())
}
