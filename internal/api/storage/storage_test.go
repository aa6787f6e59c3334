package storage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cuongbtq/poke-report/internal/api/model"
	"github.com/cuongbtq/poke-report/internal/report/domain"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStorage(sqlx.NewDb(db, "postgres")), mock
}

func TestStorage_CreateRequest(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO report_requests (type, sample_size, status)")).
		WithArgs("fire", 4, "pending").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(11, now, now))

	req := &model.Request{Type: "fire", SampleSize: 4, Status: "pending"}
	require.NoError(t, s.CreateRequest(context.Background(), req))

	assert.Equal(t, int64(11), req.ID)
	assert.Equal(t, now, req.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_GetRequest(t *testing.T) {
	s, mock := newMockStorage(t)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "type", "sample_size", "status", "url", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM report_requests WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(3, "grass", 0, "completed", "https://x/poke_report_3.csv", now, now))

	req, err := s.GetRequest(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "grass", req.Type)
	assert.Equal(t, "completed", req.Status)
	assert.Equal(t, sql.NullString{String: "https://x/poke_report_3.csv", Valid: true}, req.URL)

	mock.ExpectQuery(regexp.QuoteMeta("FROM report_requests WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(cols))

	_, err = s.GetRequest(context.Background(), 4)
	assert.ErrorIs(t, err, domain.ErrJobNotFound)

	mock.ExpectQuery(regexp.QuoteMeta("FROM report_requests WHERE id = $1")).
		WithArgs(int64(5)).
		WillReturnError(errors.New("connection reset"))

	_, err = s.GetRequest(context.Background(), 5)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrJobNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_UpdateRequest(t *testing.T) {
	s, mock := newMockStorage(t)
	update := regexp.QuoteMeta("UPDATE report_requests")

	mock.ExpectExec(update).
		WithArgs(int64(1), "completed", sql.NullString{String: "https://x/r.csv", Valid: true}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.UpdateRequest(context.Background(), 1, domain.StatusCompleted, "https://x/r.csv"))

	mock.ExpectExec(update).
		WithArgs(int64(1), "failed", sql.NullString{}).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.UpdateRequest(context.Background(), 1, domain.StatusFailed, ""))

	mock.ExpectExec(update).
		WithArgs(int64(2), "inprogress", sql.NullString{}).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.UpdateRequest(context.Background(), 2, domain.StatusInProgress, ""), domain.ErrJobNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_ListRequests(t *testing.T) {
	s, mock := newMockStorage(t)
	cursorAt := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "type", "sample_size", "status", "url", "created_at", "updated_at"}

	mock.ExpectQuery(regexp.QuoteMeta("AND type = $1 AND status = $2 AND (created_at, id) < ($3, $4) ORDER BY created_at DESC, id DESC LIMIT $5")).
		WithArgs("fire", "failed", cursorAt, int64(9), 11).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(8, "fire", 1, "failed", nil, cursorAt, cursorAt))

	rows, err := s.ListRequests(context.Background(), RequestFilter{
		Type:     "fire",
		Status:   "failed",
		PageSize: 10,
		Cursor:   &RequestCursor{CreatedAt: cursorAt, ID: 9},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].URL.Valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStorage_Migrate(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS report_requests")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
