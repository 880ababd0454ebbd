package domain

import "time"

// Event is a multi-attendee occurrence with RSVPs. Capacity 0 means unlimited.
type Event struct {
	ID          int64
	Title       string
	Description *string
	Location    *string
	StartTime   time.Time
	EndTime     time.Time
	Capacity    int

	SeriesID      *int64
	OriginalStart time.Time
	IsException   bool

	CreatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Unlimited returns true if the event has no capacity limit
func (e *Event) Unlimited() bool {
	return e.Capacity <= 0
}

// Fits reports whether units more attendees fit next to used ones
func (e *Event) Fits(used, units int) bool {
	return e.Unlimited() || used+units <= e.Capacity
}

// EventFilter selects events for listing
type EventFilter struct {
	From     *time.Time
	To       *time.Time
	SeriesID *int64
}
