package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/logger"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/ptr"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/types"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var msk = time.FixedZone("UTC+3", 3*3600)

func TestExecute_FiltersByAvailabilityAndMemberSchedule(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	now := time.Date(2025, 7, 1, 9, 30, 0, 0, msk)

	mkSlot := func(hour, capacity int, category domain.SlotCategory) *domain.Slot {
		start := time.Date(2025, 7, 1, hour, 0, 0, 0, msk)
		s, err := store.Slots().Create(ctx, &domain.Slot{
			Title: "Lesson", StartTime: start, EndTime: start.Add(time.Hour), Category: category, Capacity: capacity,
		})
		require.NoError(t, err)
		return s
	}

	started := mkSlot(9, 4, domain.CategoryGroup)
	full := mkSlot(11, 1, domain.CategoryGroup)
	mine := mkSlot(12, 4, domain.CategoryGroup)
	free := mkSlot(14, 4, domain.CategoryGroup)
	private := mkSlot(16, 1, domain.CategoryPrivate)
	_ = started

	require.NoError(t, store.Slots().IncrementOccupancy(ctx, full.ID))
	require.NoError(t, store.Slots().IncrementOccupancy(ctx, mine.ID))
	_, err := store.Bookings().Create(ctx, &domain.Booking{SlotID: mine.ID, MemberID: 5, BookedBy: 5, State: domain.BookingConfirmed})
	require.NoError(t, err)

	// слот 12:30 пересекается с занятием участника в 12:00
	overlapStart := time.Date(2025, 7, 1, 12, 30, 0, 0, msk)
	_, err = store.Slots().Create(ctx, &domain.Slot{
		Title: "Trail", StartTime: overlapStart, EndTime: overlapStart.Add(time.Hour), Category: domain.CategoryHorsemanship, Capacity: 6,
	})
	require.NoError(t, err)

	uc := NewUseCase(store.Slots(), store.Bookings(), fixedClock{now}, msk, logger.NewNop())

	resp, err := uc.Execute(ctx, &Request{MemberID: 5, Date: "2025-07-01"})
	require.NoError(t, err)

	ids := make([]int64, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []int64{free.ID, private.ID}, ids)
	assert.Equal(t, types.TimeString("14:00"), resp.Slots[0].LocalTime)
	assert.Equal(t, 60, resp.Slots[0].DurationMinutes)

	resp, err = uc.Execute(ctx, &Request{MemberID: 5, Date: "2025-07-01", Category: ptr.Ptr("private")})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, private.ID, resp.Slots[0].ID)
}

func TestExecute_Validation(t *testing.T) {
	store := memory.NewStore()
	now := time.Date(2025, 7, 1, 9, 30, 0, 0, time.UTC)
	uc := NewUseCase(store.Slots(), store.Bookings(), fixedClock{now}, nil, logger.NewNop())
	ctx := context.Background()

	_, err := uc.Execute(ctx, &Request{MemberID: 0, Date: "2025-07-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Execute(ctx, &Request{MemberID: 1, Date: "01.07.2025"})
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = uc.Execute(ctx, &Request{MemberID: 1, Date: "2025-06-30"})
	assert.ErrorIs(t, err, ErrDateInPast)

	_, err = uc.Execute(ctx, &Request{MemberID: 1, Date: "2025-07-01", Category: ptr.Ptr("rodeo")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
