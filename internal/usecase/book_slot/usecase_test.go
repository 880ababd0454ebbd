package book_slot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/logger"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/metrics"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newUseCase(store *memory.Store) *UseCase {
	return NewUseCase(
		store.Slots(),
		store.Bookings(),
		store.TxManager(),
		(*metrics.Metrics)(nil),
		fixedClock{now: testNow},
		logger.NewNop(),
	)
}

func createSlot(t *testing.T, store *memory.Store, start time.Time, capacity int) *domain.Slot {
	t.Helper()
	slot, err := store.Slots().Create(context.Background(), &domain.Slot{
		Title:     "Group lesson",
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Category:  domain.CategoryGroup,
		Capacity:  capacity,
		CreatedBy: 1,
	})
	require.NoError(t, err)
	return slot
}

func TestExecute_Success(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	slot := createSlot(t, store, testNow.Add(48*time.Hour), 3)

	resp, err := newUseCase(store).Execute(ctx, &Request{SlotID: slot.ID, MemberID: 42, ActorID: 42})
	require.NoError(t, err)

	assert.Equal(t, "confirmed", resp.State)
	assert.Equal(t, "pending", resp.AttendanceState)
	assert.Equal(t, 2, resp.Remaining)
	assert.Equal(t, testNow, resp.BookedAt)

	got, err := store.Slots().GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Occupancy)
}

func TestExecute_Errors(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newUseCase(store)

	past := createSlot(t, store, testNow.Add(-time.Hour), 3)
	startsNow := createSlot(t, store, testNow, 3)
	full := createSlot(t, store, testNow.Add(72*time.Hour), 1)
	_, err := uc.Execute(ctx, &Request{SlotID: full.ID, MemberID: 1, ActorID: 1})
	require.NoError(t, err)

	cases := []struct {
		name string
		req  *Request
		want error
	}{
		{"invalid", &Request{SlotID: 0, MemberID: 2, ActorID: 2}, domain.ErrInvalidInput},
		{"not found", &Request{SlotID: 999, MemberID: 2, ActorID: 2}, domain.ErrSlotNotFound},
		{"in past", &Request{SlotID: past.ID, MemberID: 2, ActorID: 2}, domain.ErrSlotInPast},
		{"starts now", &Request{SlotID: startsNow.ID, MemberID: 2, ActorID: 2}, domain.ErrSlotInPast},
		{"full", &Request{SlotID: full.ID, MemberID: 2, ActorID: 2}, domain.ErrSlotFull},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Execute(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestExecute_MemberScheduleConflict(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newUseCase(store)

	base := testNow.Add(48 * time.Hour)
	first := createSlot(t, store, base, 5)
	overlapping := createSlot(t, store, base.Add(30*time.Minute), 5)
	touching := createSlot(t, store, base.Add(time.Hour), 5)

	_, err := uc.Execute(ctx, &Request{SlotID: first.ID, MemberID: 7, ActorID: 7})
	require.NoError(t, err)

	_, err = uc.Execute(ctx, &Request{SlotID: first.ID, MemberID: 7, ActorID: 7})
	assert.ErrorIs(t, err, domain.ErrMemberScheduleConflict, "same slot twice")

	_, err = uc.Execute(ctx, &Request{SlotID: overlapping.ID, MemberID: 7, ActorID: 7})
	assert.ErrorIs(t, err, domain.ErrMemberScheduleConflict)
	assert.ErrorIs(t, err, domain.ErrStateConflict)

	_, err = uc.Execute(ctx, &Request{SlotID: touching.ID, MemberID: 7, ActorID: 7})
	assert.NoError(t, err, "back-to-back lessons do not overlap")

	got, err := store.Slots().GetByID(ctx, overlapping.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Occupancy)
}

func TestExecute_ConcurrentLastSeat(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newUseCase(store)
	slot := createSlot(t, store, testNow.Add(48*time.Hour), 1)

	const members = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 1; i <= members; i++ {
		wg.Add(1)
		go func(memberID int64) {
			defer wg.Done()
			_, err := uc.Execute(ctx, &Request{SlotID: slot.ID, MemberID: memberID, ActorID: memberID})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrSlotFull)
			}
		}(int64(i))
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	got, err := store.Slots().GetByID(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Occupancy)
}

func TestExecute_ConcurrentOverlappingSlotsSameMember(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := newUseCase(store)

	base := testNow.Add(48 * time.Hour)
	a := createSlot(t, store, base, 5)
	b := createSlot(t, store, base.Add(15*time.Minute), 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []int64{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, slotID int64) {
			defer wg.Done()
			_, errs[i] = uc.Execute(ctx, &Request{SlotID: slotID, MemberID: 5, ActorID: 5})
		}(i, id)
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			assert.ErrorIs(t, err, domain.ErrMemberScheduleConflict)
		}
	}
	assert.Equal(t, 1, failed)
}
