package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/models"
)

const selectActionsSQL = `SELECT id, kind, payload, expected_version, enqueued_at, vector, retry_count, status FROM actions`

var actionColumns = []string{
	"id", "kind", "payload", "expected_version",
	"enqueued_at", "vector", "retry_count", "status",
}

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newDBFromSQL(db *sql.DB) *DB {
	return &DB{DB: db, logger: logger.Nop()}
}

func newTestQueueRepo(t *testing.T, db *sql.DB) QueueRepository {
	t.Helper()
	return NewSQLiteQueueRepository(newDBFromSQL(db), logger.Nop())
}

func encodedPayload(t *testing.T, p models.ActionPayload) []byte {
	t.Helper()
	raw, err := models.EncodePayload(p)
	require.NoError(t, err)
	return raw
}

func actionRowArgs(t *testing.T, action models.QueuedAction, vector driver.Value) []driver.Value {
	t.Helper()
	return []driver.Value{
		action.ID, string(action.Kind), encodedPayload(t, action.Payload),
		action.ExpectedVersion, action.EnqueuedAt, vector,
		action.RetryCount, string(action.Status),
	}
}

func TestSQLiteQueueRepository_SaveAction(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestQueueRepo(t, db)

	now := time.Now().UTC()
	action := testAction("action-1", now)
	action.Vector = models.VersionVector{"client-a": 2}

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO actions (id,kind,payload,expected_version,enqueued_at,vector,retry_count,status) VALUES (?,?,?,?,?,?,?,?)`)).
		WithArgs("action-1", "UPDATE_STATE", encodedPayload(t, action.Payload),
			int64(5), now, `{"client-a":2}`, 0, "pending").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SaveAction(context.Background(), action))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteQueueRepository_SaveAction_EmptyVectorIsNull(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestQueueRepo(t, db)

	now := time.Now().UTC()
	action := testAction("action-1", now)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO actions`)).
		WithArgs("action-1", "UPDATE_STATE", encodedPayload(t, action.Payload),
			int64(5), now, nil, 0, "pending").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.SaveAction(context.Background(), action))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteQueueRepository_GetAction(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestQueueRepo(t, db)

	now := time.Now().UTC()
	action := testAction("action-1", now)

	mock.ExpectQuery(regexp.QuoteMeta(selectActionsSQL + ` WHERE id = ?`)).
		WithArgs("action-1").
		WillReturnRows(sqlmock.NewRows(actionColumns).
			AddRow(actionRowArgs(t, action, `{"client-a":2}`)...))

	got, err := repo.GetAction(context.Background(), "action-1")
	require.NoError(t, err)
	assert.Equal(t, action.ID, got.ID)
	assert.Equal(t, action.Kind, got.Kind)
	assert.Equal(t, action.Payload, got.Payload)
	assert.Equal(t, models.VersionVector{"client-a": 2}, got.Vector)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteQueueRepository_GetAction_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestQueueRepo(t, db)

	mock.ExpectQuery(regexp.QuoteMeta(selectActionsSQL + ` WHERE id = ?`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetAction(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrActionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteQueueRepository_GetAction_CorruptPayload(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestQueueRepo(t, db)

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta(selectActionsSQL + ` WHERE id = ?`)).
		WithArgs("action-1").
		WillReturnRows(sqlmock.NewRows(actionColumns).
			AddRow("action-1", "UPDATE_STATE", []byte("not-json"), int64(5), now, nil, 0, "pending"))

	_, err := repo.GetAction(context.Background(), "action-1")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteQueueRepository_ListActions(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestQueueRepo(t, db)

	now := time.Now().UTC()
	first := testAction("action-1", now)
	second := testAction("action-2", now.Add(time.Second))

	mock.ExpectQuery(regexp.QuoteMeta(selectActionsSQL + ` ORDER BY enqueued_at ASC, id ASC`)).
		WillReturnRows(sqlmock.NewRows(actionColumns).
			AddRow(actionRowArgs(t, first, nil)...).
			AddRow(actionRowArgs(t, second, nil)...))

	actions, err := repo.ListActions(context.Background())
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "action-1", actions[0].ID)
	assert.Equal(t, "action-2", actions[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteQueueRepository_ListActions_Empty(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestQueueRepo(t, db)

	mock.ExpectQuery(regexp.QuoteMeta(selectActionsSQL)).
		WillReturnRows(sqlmock.NewRows(actionColumns))

	actions, err := repo.ListActions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, actions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteQueueRepository_DeleteAction(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestQueueRepo(t, db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM actions WHERE id = ?`)).
		WithArgs("action-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteAction(context.Background(), "action-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteQueueRepository_DeleteAction_AbsentIsNoError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestQueueRepo(t, db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM actions WHERE id = ?`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.DeleteAction(context.Background(), "missing"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteQueueRepository_IncrementRetry(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestQueueRepo(t, db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE actions SET retry_count = retry_count + 1 WHERE id = ?`)).
		WithArgs("action-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.IncrementRetry(context.Background(), "action-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteQueueRepository_SetStatus(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestQueueRepo(t, db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE actions SET status = ? WHERE id = ?`)).
		WithArgs("syncing", "action-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetStatus(context.Background(), "action-1", models.StatusSyncing))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteQueueRepository_SetStatus_ExecError(t *testing.T) {
	db, mock := newTestDB(t)
	repo := newTestQueueRepo(t, db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE actions SET status = ?`)).
		WillReturnError(errors.New("database is locked"))

	err := repo.SetStatus(context.Background(), "action-1", models.StatusPending)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
