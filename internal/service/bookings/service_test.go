package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/bookings/models"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/logger"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) (*memory.Store, *Service) {
	t.Helper()
	store := memory.NewStore()
	svc := NewService(store.Bookings(), store.Slots(), store.TxManager(), fixedClock{now: testNow}, logger.NewNop())
	return store, svc
}

func addBooking(t *testing.T, store *memory.Store, start time.Time, memberID int64) (*domain.Slot, *domain.Booking) {
	t.Helper()
	ctx := context.Background()
	slot, err := store.Slots().Create(ctx, &domain.Slot{
		Title: "Lesson", StartTime: start, EndTime: start.Add(time.Hour), Category: domain.CategoryGroup, Capacity: 4,
	})
	require.NoError(t, err)
	require.NoError(t, store.Slots().IncrementOccupancy(ctx, slot.ID))
	b, err := store.Bookings().Create(ctx, &domain.Booking{
		SlotID: slot.ID, MemberID: memberID, BookedBy: memberID,
		State: domain.BookingConfirmed, AttendanceState: domain.AttendancePending, BookedAt: testNow,
	})
	require.NoError(t, err)
	return slot, b
}

func TestMarkAttendance_KeepsStateAndOccupancy(t *testing.T) {
	ctx := context.Background()
	store, svc := newFixture(t)
	slot, b := addBooking(t, store, testNow.Add(-2*time.Hour), 1)

	resp, err := svc.MarkAttendance(ctx, b.ID, &models.MarkAttendanceRequest{
		ActorID: 99, ActorIsStaff: true, State: "present",
	})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.State)
	assert.Equal(t, "present", resp.AttendanceState)

	// occupancy по-прежнему равна числу подтверждённых бронирований
	got, err := store.Slots().GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Occupancy)

	stored, err := store.Bookings().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, stored.State)
	assert.Equal(t, domain.AttendancePresent, stored.AttendanceState)
}

func TestMarkAttendance_NoTimeWindow(t *testing.T) {
	ctx := context.Background()
	store, svc := newFixture(t)
	_, future := addBooking(t, store, testNow.Add(time.Hour), 1)
	_, past := addBooking(t, store, testNow.Add(-3*time.Hour), 2)

	resp, err := svc.MarkAttendance(ctx, future.ID, &models.MarkAttendanceRequest{ActorID: 99, ActorIsStaff: true, State: "late"})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.State)
	assert.Equal(t, "late", resp.AttendanceState)

	resp, err = svc.MarkAttendance(ctx, past.ID, &models.MarkAttendanceRequest{ActorID: 99, ActorIsStaff: true, State: "absent"})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.State)
	assert.Equal(t, "absent", resp.AttendanceState)
}

func TestMarkAttendance_CancelledBooking(t *testing.T) {
	ctx := context.Background()
	store, svc := newFixture(t)
	_, b := addBooking(t, store, testNow.Add(-time.Hour), 1)

	b.State = domain.BookingCancelled
	require.NoError(t, store.Bookings().Update(ctx, b))

	resp, err := svc.MarkAttendance(ctx, b.ID, &models.MarkAttendanceRequest{ActorID: 99, ActorIsStaff: true, State: "absent"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", resp.State)
	assert.Equal(t, "absent", resp.AttendanceState)
}

func TestMarkAttendance_Rejections(t *testing.T) {
	ctx := context.Background()
	store, svc := newFixture(t)
	_, b := addBooking(t, store, testNow.Add(-time.Hour), 1)

	_, err := svc.MarkAttendance(ctx, b.ID, &models.MarkAttendanceRequest{ActorID: 1, State: "present"})
	assert.ErrorIs(t, err, domain.ErrAuthorizationDenied)

	_, err = svc.MarkAttendance(ctx, b.ID, &models.MarkAttendanceRequest{ActorID: 99, ActorIsStaff: true, State: "asleep"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.MarkAttendance(ctx, 404, &models.MarkAttendanceRequest{ActorID: 99, ActorIsStaff: true, State: "present"})
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestListUpcomingForMember(t *testing.T) {
	ctx := context.Background()
	store, svc := newFixture(t)
	addBooking(t, store, testNow.Add(48*time.Hour), 1)
	addBooking(t, store, testNow.Add(24*time.Hour), 1)
	addBooking(t, store, testNow.Add(-24*time.Hour), 1)
	addBooking(t, store, testNow.Add(24*time.Hour), 2)

	resp, err := svc.ListUpcomingForMember(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)
	assert.True(t, resp.Bookings[0].Slot.StartTime.Before(resp.Bookings[1].Slot.StartTime))

	_, err = svc.ListUpcomingForMember(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()
	store, svc := newFixture(t)
	slot, b := addBooking(t, store, testNow.Add(time.Hour), 7)

	resp, err := svc.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), resp.MemberID)
	require.NotNil(t, resp.Slot)
	assert.Equal(t, slot.ID, resp.Slot.ID)

	_, err = svc.GetByID(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}
