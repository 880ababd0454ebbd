package rsvp

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/dbmetrics"
)

func newMockRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRepository(dbmetrics.Wrap(db, nil)), mock
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM rsvps WHERE event_id = $1 AND member_id = $2")).
		WithArgs(int64(3), int64(7)).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := repo.Get(context.Background(), 3, 7)
	assert.ErrorIs(t, err, domain.ErrRSVPNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByEvent_ScansWaitlist(t *testing.T) {
	repo, mock := newMockRepository(t)
	t0 := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(columns).
		AddRow(int64(1), int64(3), int64(10), "attending", 2, nil, nil, t0, t0).
		AddRow(int64(2), int64(3), int64(20), "waitlist", 0, "late reply", t0, t0, t0)
	mock.ExpectQuery(regexp.QuoteMeta("FROM rsvps WHERE event_id = $1 ORDER BY id ASC")).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	list, err := repo.ListByEvent(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, domain.RSVPAttending, list[0].Status)
	assert.Equal(t, 3, list[0].Units())
	assert.Nil(t, list[0].WaitlistedAt)
	assert.Equal(t, domain.RSVPWaitlist, list[1].Status)
	require.NotNil(t, list[1].WaitlistedAt)
	assert.Equal(t, t0, *list[1].WaitlistedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAndDelete_ErrorMapping(t *testing.T) {
	ctx := context.Background()
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE rsvps SET status = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}))
	assert.ErrorIs(t, repo.Update(ctx, &domain.RSVP{ID: 5, Status: domain.RSVPMaybe}), domain.ErrRSVPNotFound)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rsvps WHERE event_id = $1 AND member_id = $2")).
		WithArgs(int64(3), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(ctx, 3, 7), domain.ErrRSVPNotFound)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM rsvps")).
		WillReturnError(errors.New("connection refused"))
	err := repo.Delete(ctx, 3, 7)
	assert.ErrorIs(t, err, ErrExecQuery)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}
