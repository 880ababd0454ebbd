package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/infra/storage/memory"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/integrations/notifications"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/logger"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/ptr"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type collectingNotifier struct {
	sent   []notifications.Message
	reject bool
}

func (n *collectingNotifier) Dispatch(msg notifications.Message) bool {
	if n.reject {
		return false
	}
	n.sent = append(n.sent, msg)
	return true
}

var now = time.Date(2025, 4, 14, 8, 0, 0, 0, time.UTC)

func seedBooking(t *testing.T, store *memory.Store, start time.Time, memberID int64, state domain.BookingState) {
	t.Helper()
	ctx := context.Background()
	slot, err := store.Slots().Create(ctx, &domain.Slot{
		Title: "Jumping", StartTime: start, EndTime: start.Add(time.Hour),
		Category: domain.CategoryGroup, Capacity: 4, Location: ptr.Ptr("Arena 2"),
	})
	require.NoError(t, err)
	_, err = store.Bookings().Create(ctx, &domain.Booking{SlotID: slot.ID, MemberID: memberID, BookedBy: memberID, State: state})
	require.NoError(t, err)
}

func TestReminders_RunOnceSelectsWindow(t *testing.T) {
	store := memory.NewStore()
	lead, window := 24*time.Hour, 15*time.Minute

	seedBooking(t, store, now.Add(lead), 1, domain.BookingConfirmed)               // правая граница включена
	seedBooking(t, store, now.Add(lead-window), 2, domain.BookingConfirmed)        // левая граница исключена
	seedBooking(t, store, now.Add(lead-5*time.Minute), 3, domain.BookingConfirmed) // внутри окна
	seedBooking(t, store, now.Add(lead-5*time.Minute), 4, domain.BookingCancelled) // отменено
	seedBooking(t, store, now.Add(lead+time.Minute), 5, domain.BookingConfirmed)   // ещё рано

	notifier := &collectingNotifier{}
	r, err := NewReminders("*/15 * * * *", lead, window, store.Bookings(), notifier, fixedClock{now}, logger.NewNop())
	require.NoError(t, err)

	sent, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	recipients := make([]int64, 0, len(notifier.sent))
	for _, msg := range notifier.sent {
		assert.Equal(t, notifications.TemplateLessonReminder, msg.Template)
		assert.Equal(t, "Arena 2", msg.Data["location"])
		recipients = append(recipients, msg.RecipientID)
	}
	assert.ElementsMatch(t, []int64{1, 3}, recipients)
}

func TestReminders_DroppedMessagesAreNotCounted(t *testing.T) {
	store := memory.NewStore()
	seedBooking(t, store, now.Add(time.Hour), 1, domain.BookingConfirmed)

	r, err := NewReminders("@every 1m", time.Hour, time.Minute, store.Bookings(),
		&collectingNotifier{reject: true}, fixedClock{now}, logger.NewNop())
	require.NoError(t, err)

	sent, err := r.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
}

func TestNewReminders_InvalidSchedule(t *testing.T) {
	_, err := NewReminders("every now and then", time.Hour, time.Minute, nil, nil, fixedClock{now}, logger.NewNop())
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = NewReminders("@hourly", 0, time.Minute, nil, nil, fixedClock{now}, logger.NewNop())
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestReminders_StartStop(t *testing.T) {
	r, err := NewReminders("@hourly", time.Hour, time.Hour, memory.NewStore().Bookings(),
		&collectingNotifier{}, fixedClock{now}, logger.NewNop())
	require.NoError(t, err)

	r.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, r.Stop(ctx))
}

// blockingBookings держит запуск напоминаний, пока тест не отпустит его
type blockingBookings struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingBookings) ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]*domain.BookingWithSlot, error) {
	select {
	case b.started <- struct{}{}:
	default:
	}
	<-b.release
	return nil, nil
}

func TestReminders_StopTimesOutOnRunningJob(t *testing.T) {
	repo := &blockingBookings{started: make(chan struct{}, 1), release: make(chan struct{})}
	r, err := NewReminders("@every 1s", time.Hour, time.Minute, repo,
		&collectingNotifier{}, fixedClock{now}, logger.NewNop())
	require.NoError(t, err)

	r.Start()
	select {
	case <-repo.started:
	case <-time.After(5 * time.Second):
		t.Fatal("reminder job did not start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, r.Stop(ctx), context.DeadlineExceeded)

	close(repo.release)
}
