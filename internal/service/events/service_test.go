package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/events/models"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/logger"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/ptr"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func TestCreateAndGet(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store.Events(), store.RSVPs(), fixedClock{now: testNow}, logger.NewNop())

	start := testNow.Add(72 * time.Hour)
	created, err := svc.Create(ctx, &models.CreateEventRequest{
		ActorID: 99, Title: "Spring show", Location: ptr.Ptr("Arena"),
		StartTime: start, EndTime: start.Add(3 * time.Hour), Capacity: 3,
	})
	require.NoError(t, err)

	_, err = store.RSVPs().Create(ctx, &domain.RSVP{EventID: created.ID, MemberID: 1, Status: domain.RSVPAttending, GuestCount: 1})
	require.NoError(t, err)
	_, err = store.RSVPs().Create(ctx, &domain.RSVP{EventID: created.ID, MemberID: 2, Status: domain.RSVPWaitlist, GuestCount: 1, WaitlistedAt: ptr.Ptr(testNow)})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Attending)
	assert.Equal(t, 1, got.Waitlisted)

	list, err := svc.List(ctx, ptr.Ptr(testNow), ptr.Ptr(testNow.Add(96*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	_, err = svc.GetByID(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrEventNotFound)
}

func TestCreate_Validation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewService(store.Events(), store.RSVPs(), fixedClock{now: testNow}, logger.NewNop())

	_, err := svc.Create(ctx, &models.CreateEventRequest{Title: "Past", StartTime: testNow.Add(-time.Hour), EndTime: testNow})
	assert.ErrorIs(t, err, domain.ErrEventInPast)

	_, err = svc.Create(ctx, &models.CreateEventRequest{Title: "", StartTime: testNow.Add(time.Hour), EndTime: testNow.Add(2 * time.Hour)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Create(ctx, &models.CreateEventRequest{Title: "Neg", StartTime: testNow.Add(time.Hour), EndTime: testNow.Add(2 * time.Hour), Capacity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.List(ctx, ptr.Ptr(testNow), ptr.Ptr(testNow))
	assert.ErrorIs(t, err, domain.ErrInvalidTimeRange)
}
