package domain

import (
	"sort"
	"time"
)

// RSVPStatus is a member's response to an event
type RSVPStatus string

const (
	RSVPAttending    RSVPStatus = "attending"
	RSVPNotAttending RSVPStatus = "not_attending"
	RSVPMaybe        RSVPStatus = "maybe"
	RSVPWaitlist     RSVPStatus = "waitlist"
)

// IsValid returns true for statuses a member may request.
// waitlist is assigned by the system only.
func (s RSVPStatus) IsValid() bool {
	switch s {
	case RSVPAttending, RSVPNotAttending, RSVPMaybe:
		return true
	}
	return false
}

// RSVP is a member's response to an event, counted with guests
type RSVP struct {
	ID           int64
	EventID      int64
	MemberID     int64
	Status       RSVPStatus
	GuestCount   int
	Notes        *string
	WaitlistedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Units returns the number of seats the RSVP takes: the member plus guests
func (r *RSVP) Units() int {
	return 1 + r.GuestCount
}

// AttendingUnits sums seats over attending RSVPs, skipping excludeMemberID
func AttendingUnits(rsvps []*RSVP, excludeMemberID int64) int {
	total := 0
	for _, r := range rsvps {
		if r.Status == RSVPAttending && r.MemberID != excludeMemberID {
			total += r.Units()
		}
	}
	return total
}

// WaitlistQueue returns waitlisted RSVPs ordered by the time they were waitlisted
func WaitlistQueue(rsvps []*RSVP) []*RSVP {
	queue := make([]*RSVP, 0)
	for _, r := range rsvps {
		if r.Status == RSVPWaitlist {
			queue = append(queue, r)
		}
	}
	sort.SliceStable(queue, func(i, j int) bool {
		a, b := waitlistKey(queue[i]), waitlistKey(queue[j])
		if !a.Equal(b) {
			return a.Before(b)
		}
		return queue[i].ID < queue[j].ID
	})
	return queue
}

func waitlistKey(r *RSVP) time.Time {
	if r.WaitlistedAt != nil {
		return *r.WaitlistedAt
	}
	return r.CreatedAt
}
