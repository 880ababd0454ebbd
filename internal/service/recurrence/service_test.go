package recurrence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/recurrence/models"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/logger"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/metrics"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/ptr"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type fakeAttendance struct {
	attending int
	promoted  []int64
}

func (f *fakeAttendance) AttendeeCount(ctx context.Context, eventID int64) (int, error) {
	return f.attending, nil
}

func (f *fakeAttendance) PromoteWaitlist(ctx context.Context, eventID int64) (int, error) {
	f.promoted = append(f.promoted, eventID)
	return 1, nil
}

func newFixture(now time.Time) (*memory.Store, *Service, *fakeAttendance) {
	store := memory.NewStore()
	attendance := &fakeAttendance{}
	svc := NewService(store.Series(), store.Slots(), store.Events(), store.Bookings(), attendance, store.TxManager(),
		(*metrics.Metrics)(nil), fixedClock{now: now}, time.UTC, logger.NewNop())
	return store, svc, attendance
}

func mwfRequest() *models.CreateSeriesRequest {
	return &models.CreateSeriesRequest{
		ActorID:         99,
		Kind:            "slot",
		Title:           "Group dressage",
		Pattern:         "weekly",
		DaysOfWeek:      []int{5, 1, 3, 1},
		TimeOfDay:       "10:00",
		DurationMinutes: 60,
		WindowStart:     "2025-01-06",
		MaxOccurrences:  ptr.Ptr(6),
		Capacity:        4,
		Category:        "group",
	}
}

func seriesSlots(t *testing.T, store *memory.Store, seriesID int64) []*domain.Slot {
	t.Helper()
	slots, err := store.Slots().List(context.Background(), domain.SlotFilter{SeriesID: &seriesID})
	require.NoError(t, err)
	return slots
}

func TestCreateSeries_ExpandsAndIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, svc, _ := newFixture(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	resp, err := svc.CreateSeries(ctx, mwfRequest())
	require.NoError(t, err)
	assert.Equal(t, 6, resp.Created)
	assert.Equal(t, []int{1, 3, 5}, resp.Series.DaysOfWeek)
	assert.Contains(t, resp.Series.RRule, "FREQ=WEEKLY")

	slots := seriesSlots(t, store, resp.Series.ID)
	require.Len(t, slots, 6)
	assert.Equal(t, time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC), slots[0].StartTime)
	assert.Equal(t, time.Date(2025, 1, 17, 11, 0, 0, 0, time.UTC), slots[5].EndTime)
	assert.Equal(t, "Group dressage", slots[0].Title)

	created, err := svc.Expand(ctx, resp.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, seriesSlots(t, store, resp.Series.ID), 6)
}

func TestExpand_SkipsPastCandidates(t *testing.T) {
	ctx := context.Background()
	store, svc, _ := newFixture(time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC))

	resp, err := svc.CreateSeries(ctx, mwfRequest())
	require.NoError(t, err)
	// прошедшие 01-06 и 01-08 не создаются и не входят в maxOccurrences
	assert.Equal(t, 6, resp.Created)
	slots := seriesSlots(t, store, resp.Series.ID)
	require.Len(t, slots, 6)
	assert.Equal(t, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), slots[0].StartTime)
	assert.Equal(t, time.Date(2025, 1, 22, 10, 0, 0, 0, time.UTC), slots[5].StartTime)

	// созданные вхождения продолжают расходовать лимит, когда уходят в прошлое
	later := NewService(store.Series(), store.Slots(), store.Events(), store.Bookings(), nil, store.TxManager(),
		(*metrics.Metrics)(nil), fixedClock{now: time.Date(2025, 1, 14, 0, 0, 0, 0, time.UTC)}, time.UTC, logger.NewNop())
	created, err := later.Expand(ctx, resp.Series.ID)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Len(t, seriesSlots(t, store, resp.Series.ID), 6)
}

func TestCreateSeries_Validation(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newFixture(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	tests := []struct {
		name   string
		mutate func(r *models.CreateSeriesRequest)
		want   error
	}{
		{"weekly without days", func(r *models.CreateSeriesRequest) { r.DaysOfWeek = nil }, domain.ErrInvalidInput},
		{"day out of range", func(r *models.CreateSeriesRequest) { r.DaysOfWeek = []int{7} }, domain.ErrInvalidInput},
		{"bad pattern", func(r *models.CreateSeriesRequest) { r.Pattern = "yearly" }, domain.ErrInvalidInput},
		{"bad time", func(r *models.CreateSeriesRequest) { r.TimeOfDay = "9am" }, domain.ErrInvalidInput},
		{"bad date", func(r *models.CreateSeriesRequest) { r.WindowStart = "06.01.2025" }, domain.ErrInvalidInput},
		{"end before start", func(r *models.CreateSeriesRequest) { r.WindowEnd = ptr.Ptr("2025-01-01") }, domain.ErrInvalidTimeRange},
		{"unknown kind", func(r *models.CreateSeriesRequest) { r.Kind = "lesson" }, domain.ErrOccurrenceKind},
		{"slot without capacity", func(r *models.CreateSeriesRequest) { r.Capacity = 0 }, domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mwfRequest()
			tt.mutate(req)
			_, err := svc.CreateSeries(ctx, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateSeries_PreservesExceptionsAndBookedOccurrences(t *testing.T) {
	ctx := context.Background()
	store, svc, _ := newFixture(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	req := mwfRequest()
	req.Pattern = "daily"
	req.DaysOfWeek = nil
	req.MaxOccurrences = ptr.Ptr(5)
	resp, err := svc.CreateSeries(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 5, resp.Created)

	slots := seriesSlots(t, store, resp.Series.ID)
	require.NoError(t, store.Slots().IncrementOccupancy(ctx, slots[1].ID))
	_, err = svc.UpdateOccurrence(ctx, domain.OccurrenceSlot, slots[2].ID, &models.UpdateOccurrenceRequest{
		Title: ptr.Ptr("Jumping clinic"),
	})
	require.NoError(t, err)

	created, err := svc.UpdateSeries(ctx, resp.Series.ID, &models.UpdateSeriesRequest{TimeOfDay: ptr.Ptr("11:00")})
	require.NoError(t, err)
	assert.Equal(t, 5, created)

	after := seriesSlots(t, store, resp.Series.ID)
	assert.Len(t, after, 7)

	booked, err := store.Slots().GetByID(ctx, slots[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, booked.Occupancy)
	assert.True(t, booked.IsException)

	exception, err := store.Slots().GetByID(ctx, slots[2].ID)
	require.NoError(t, err)
	assert.True(t, exception.IsException)
	assert.Equal(t, "Jumping clinic", exception.Title)

	_, err = store.Slots().GetByID(ctx, slots[0].ID)
	assert.ErrorIs(t, err, domain.ErrSlotNotFound)
}

func TestUpdateSeries_WeekdayChangeDetachesOccupiedOccurrence(t *testing.T) {
	ctx := context.Background()
	store, svc, _ := newFixture(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	resp, err := svc.CreateSeries(ctx, mwfRequest())
	require.NoError(t, err)
	wednesday := seriesSlots(t, store, resp.Series.ID)[1]
	require.Equal(t, time.Wednesday, wednesday.StartTime.Weekday())
	require.NoError(t, store.Slots().IncrementOccupancy(ctx, wednesday.ID))

	created, err := svc.UpdateSeries(ctx, resp.Series.ID, &models.UpdateSeriesRequest{DaysOfWeek: []int{2, 4}})
	require.NoError(t, err)
	assert.Equal(t, 6, created)

	kept, err := store.Slots().GetByID(ctx, wednesday.ID)
	require.NoError(t, err)
	assert.True(t, kept.IsException)
	assert.Equal(t, 1, kept.Occupancy)

	var patterned int
	for _, slot := range seriesSlots(t, store, resp.Series.ID) {
		if slot.IsException {
			continue
		}
		patterned++
		day := slot.StartTime.Weekday()
		assert.True(t, day == time.Tuesday || day == time.Thursday, "unexpected weekday %s", day)
	}
	assert.Equal(t, 6, patterned)

	// освободившееся вхождение старого шаблона не удаляется следующей перегенерацией
	require.NoError(t, store.Slots().DecrementOccupancy(ctx, wednesday.ID))
	created, err = svc.UpdateSeries(ctx, resp.Series.ID, &models.UpdateSeriesRequest{Title: ptr.Ptr("Group jumping")})
	require.NoError(t, err)
	assert.Equal(t, 6, created)

	_, err = store.Slots().GetByID(ctx, wednesday.ID)
	require.NoError(t, err)
	assert.Len(t, seriesSlots(t, store, resp.Series.ID), 7)
}

func TestDeleteOccurrence_NotResurrectedByExpand(t *testing.T) {
	ctx := context.Background()
	store, svc, _ := newFixture(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	resp, err := svc.CreateSeries(ctx, mwfRequest())
	require.NoError(t, err)
	slots := seriesSlots(t, store, resp.Series.ID)

	require.NoError(t, store.Slots().IncrementOccupancy(ctx, slots[0].ID))
	err = svc.DeleteOccurrence(ctx, domain.OccurrenceSlot, slots[0].ID, false)
	assert.ErrorIs(t, err, domain.ErrSlotHasBookings)

	require.NoError(t, svc.DeleteOccurrence(ctx, domain.OccurrenceSlot, slots[0].ID, true))
	require.NoError(t, svc.DeleteOccurrence(ctx, domain.OccurrenceSlot, slots[3].ID, false))

	created, err := svc.Expand(ctx, resp.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, seriesSlots(t, store, resp.Series.ID), 4)
}

func TestDeleteSeries(t *testing.T) {
	ctx := context.Background()
	store, svc, _ := newFixture(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	resp, err := svc.CreateSeries(ctx, mwfRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSeries(ctx, resp.Series.ID))
	assert.Empty(t, seriesSlots(t, store, resp.Series.ID))

	got, err := svc.GetSeries(ctx, resp.Series.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	created, err := svc.Expand(ctx, resp.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	active, err := svc.ListSeries(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 0, active.Total)

	err = svc.DeleteSeries(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrSeriesNotFound)
}

func TestUpdateOccurrence_EventCapacity(t *testing.T) {
	ctx := context.Background()
	store, svc, attendance := newFixture(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	req := mwfRequest()
	req.Kind = "event"
	req.Category = ""
	req.Capacity = 10
	resp, err := svc.CreateSeries(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 6, resp.Created)

	events, err := store.Events().List(ctx, domain.EventFilter{SeriesID: &resp.Series.ID})
	require.NoError(t, err)
	eventID := events[0].ID

	attendance.attending = 6
	_, err = svc.UpdateOccurrence(ctx, domain.OccurrenceEvent, eventID, &models.UpdateOccurrenceRequest{Capacity: ptr.Ptr(5)})
	assert.ErrorIs(t, err, domain.ErrCapacityBelowOccupancy)

	out, err := svc.UpdateOccurrence(ctx, domain.OccurrenceEvent, eventID, &models.UpdateOccurrenceRequest{Capacity: ptr.Ptr(12)})
	require.NoError(t, err)
	assert.True(t, out.IsException)
	assert.Equal(t, 12, out.Capacity)
	assert.Equal(t, []int64{eventID}, attendance.promoted)
}

func TestUpdateOccurrence_SlotCapacityBelowOccupancy(t *testing.T) {
	ctx := context.Background()
	store, svc, _ := newFixture(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	resp, err := svc.CreateSeries(ctx, mwfRequest())
	require.NoError(t, err)
	slot := seriesSlots(t, store, resp.Series.ID)[0]
	require.NoError(t, store.Slots().IncrementOccupancy(ctx, slot.ID))
	require.NoError(t, store.Slots().IncrementOccupancy(ctx, slot.ID))

	_, err = svc.UpdateOccurrence(ctx, domain.OccurrenceSlot, slot.ID, &models.UpdateOccurrenceRequest{Capacity: ptr.Ptr(1)})
	assert.ErrorIs(t, err, domain.ErrCapacityBelowOccupancy)

	_, err = svc.UpdateOccurrence(ctx, domain.OccurrenceSlot, slot.ID, &models.UpdateOccurrenceRequest{
		StartTime: ptr.Ptr(time.Date(2024, 12, 31, 10, 0, 0, 0, time.UTC)),
		EndTime:   ptr.Ptr(time.Date(2024, 12, 31, 11, 0, 0, 0, time.UTC)),
	})
	assert.ErrorIs(t, err, domain.ErrSlotInPast)
}

func TestUpdateOccurrence_SlotMoveChecksMemberOverlaps(t *testing.T) {
	ctx := context.Background()
	store, svc, _ := newFixture(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	resp, err := svc.CreateSeries(ctx, mwfRequest())
	require.NoError(t, err)
	slots := seriesSlots(t, store, resp.Series.ID)
	first, second := slots[0], slots[1]

	book := func(slotID, memberID int64) *domain.Booking {
		b, err := store.Bookings().Create(ctx, &domain.Booking{
			SlotID: slotID, MemberID: memberID, BookedBy: memberID, State: domain.BookingConfirmed,
		})
		require.NoError(t, err)
		require.NoError(t, store.Slots().IncrementOccupancy(ctx, slotID))
		return b
	}
	blocking := book(first.ID, 7)
	book(second.ID, 7)
	book(second.ID, 8)

	overlapping := &models.UpdateOccurrenceRequest{
		StartTime: ptr.Ptr(first.StartTime.Add(30 * time.Minute)),
		EndTime:   ptr.Ptr(first.EndTime.Add(30 * time.Minute)),
	}
	_, err = svc.UpdateOccurrence(ctx, domain.OccurrenceSlot, second.ID, overlapping)
	assert.ErrorIs(t, err, domain.ErrMemberScheduleConflict)

	unchanged, err := store.Slots().GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.StartTime, unchanged.StartTime)
	assert.False(t, unchanged.IsException)

	// касание границ пересечением не считается
	adjacent := &models.UpdateOccurrenceRequest{
		StartTime: ptr.Ptr(first.EndTime),
		EndTime:   ptr.Ptr(first.EndTime.Add(time.Hour)),
	}
	out, err := svc.UpdateOccurrence(ctx, domain.OccurrenceSlot, second.ID, adjacent)
	require.NoError(t, err)
	assert.Equal(t, first.EndTime, out.StartTime)
	moved, err := store.Slots().GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, moved.Occupancy)

	blocking.State = domain.BookingCancelled
	require.NoError(t, store.Bookings().Update(ctx, blocking))
	require.NoError(t, store.Slots().DecrementOccupancy(ctx, first.ID))

	out, err = svc.UpdateOccurrence(ctx, domain.OccurrenceSlot, second.ID, overlapping)
	require.NoError(t, err)
	assert.Equal(t, first.StartTime.Add(30*time.Minute), out.StartTime)
}

func TestCalendarEntry(t *testing.T) {
	ctx := context.Background()
	_, svc, _ := newFixture(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	resp, err := svc.CreateSeries(ctx, mwfRequest())
	require.NoError(t, err)

	entry, err := svc.CalendarEntry(ctx, resp.Series.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC), entry.Start)
	assert.Contains(t, entry.RRule, "BYDAY=MO,WE,FR")
}
