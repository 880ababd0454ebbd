package domain

import (
	"time"
)

// SlotCategory is the kind of lesson a slot offers
type SlotCategory string

const (
	CategoryPrivate      SlotCategory = "private"
	CategoryGroup        SlotCategory = "group"
	CategoryHorsemanship SlotCategory = "horsemanship"
)

// IsValid returns true for known categories
func (c SlotCategory) IsValid() bool {
	switch c {
	case CategoryPrivate, CategoryGroup, CategoryHorsemanship:
		return true
	}
	return false
}

// Slot is a bookable time window with a finite number of seats.
// Occupancy always equals the number of confirmed bookings on the slot.
type Slot struct {
	ID         int64
	Title      string
	StartTime  time.Time
	EndTime    time.Time
	Category   SlotCategory
	Capacity   int
	Occupancy  int
	Instructor *string
	Location   *string

	// Recurrence back-reference, OriginalStart equals StartTime for one-off slots
	SeriesID      *int64
	OriginalStart time.Time
	IsException   bool

	CreatedBy int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFull returns true if no seat is left
func (s *Slot) IsFull() bool {
	return s.Occupancy >= s.Capacity
}

// Remaining returns the number of free seats
func (s *Slot) Remaining() int {
	if s.Occupancy >= s.Capacity {
		return 0
	}
	return s.Capacity - s.Occupancy
}

// Duration returns the slot length
func (s *Slot) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Overlaps reports whether two slots intersect in time
func (s *Slot) Overlaps(other *Slot) bool {
	return Overlaps(s.StartTime, s.EndTime, other.StartTime, other.EndTime)
}

// SlotFilter selects slots for listing
type SlotFilter struct {
	From     *time.Time // start_time >= From
	To       *time.Time // start_time < To
	Category *SlotCategory
	SeriesID *int64
}
