package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChangeAllowed_Boundary(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	assert.True(t, ChangeAllowed(now.Add(24*time.Hour), now), "exactly 24h ahead")
	assert.False(t, ChangeAllowed(now.Add(24*time.Hour-time.Millisecond), now), "24h minus 1ms")
	assert.True(t, ChangeAllowed(now.Add(72*time.Hour), now))
	assert.False(t, ChangeAllowed(now.Add(-time.Hour), now))
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)
	hour := time.Hour

	assert.True(t, Overlaps(base, base.Add(hour), base.Add(30*time.Minute), base.Add(2*hour)))
	assert.True(t, Overlaps(base, base.Add(2*hour), base.Add(30*time.Minute), base.Add(hour)))
	assert.False(t, Overlaps(base, base.Add(hour), base.Add(hour), base.Add(2*hour)), "touching ranges")
	assert.False(t, Overlaps(base.Add(hour), base.Add(2*hour), base, base.Add(hour)), "touching ranges reversed")
}

func TestKindOf(t *testing.T) {
	cases := map[error]Kind{
		ErrSlotNotFound:           KindNotFound,
		ErrSlotFull:               KindCapacityExceeded,
		ErrTargetSlotFull:         KindCapacityExceeded,
		ErrTooLateToCancel:        KindTemporalViolation,
		ErrMemberScheduleConflict: KindStateConflict,
		ErrStaffOnly:              KindAuthorizationDenied,
		ErrInvalidTimeRange:       KindInvalidInput,
		ErrOccupancyUnderflow:     KindInternal,
		errors.New("db down"):     KindInternal,
	}
	for err, want := range cases {
		assert.Equal(t, want, KindOf(err), err.Error())
	}

	wrapped := fmt.Errorf("book: %w", ErrSlotFull)
	assert.True(t, errors.Is(wrapped, ErrCapacityExceeded))
	assert.True(t, errors.Is(wrapped, ErrSlotFull))
	assert.Equal(t, "SlotFull", ReasonOf(wrapped))
	assert.Equal(t, "Internal", ReasonOf(errors.New("x")))
}

func TestWaitlistQueue_FIFO(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	later := t0.Add(time.Minute)

	rsvps := []*RSVP{
		{ID: 3, MemberID: 30, Status: RSVPWaitlist, WaitlistedAt: &later},
		{ID: 1, MemberID: 10, Status: RSVPAttending, GuestCount: 2},
		{ID: 2, MemberID: 20, Status: RSVPWaitlist, WaitlistedAt: &t0},
		{ID: 4, MemberID: 40, Status: RSVPMaybe},
	}

	queue := WaitlistQueue(rsvps)
	if assert.Len(t, queue, 2) {
		assert.Equal(t, int64(20), queue[0].MemberID)
		assert.Equal(t, int64(30), queue[1].MemberID)
	}

	assert.Equal(t, 3, AttendingUnits(rsvps, 0))
	assert.Equal(t, 0, AttendingUnits(rsvps, 10))
}

func TestEvent_Fits(t *testing.T) {
	unlimited := &Event{Capacity: 0}
	assert.True(t, unlimited.Fits(500, 10))

	e := &Event{Capacity: 4}
	assert.True(t, e.Fits(1, 3))
	assert.False(t, e.Fits(2, 3))
}
