package domain

import (
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/pkg/types"
)

// Pattern is the repetition rule of a series
type Pattern string

const (
	PatternDaily    Pattern = "daily"
	PatternWeekly   Pattern = "weekly"
	PatternBiweekly Pattern = "biweekly"
	PatternMonthly  Pattern = "monthly"
)

// IsValid returns true for known patterns
func (p Pattern) IsValid() bool {
	switch p {
	case PatternDaily, PatternWeekly, PatternBiweekly, PatternMonthly:
		return true
	}
	return false
}

// NeedsWeekdays returns true if the pattern filters by daysOfWeek
func (p Pattern) NeedsWeekdays() bool {
	return p == PatternWeekly || p == PatternBiweekly
}

// OccurrenceKind is what a series materializes
type OccurrenceKind string

const (
	OccurrenceSlot  OccurrenceKind = "slot"
	OccurrenceEvent OccurrenceKind = "event"
)

// IsValid returns true for known kinds
func (k OccurrenceKind) IsValid() bool {
	return k == OccurrenceSlot || k == OccurrenceEvent
}

// RecurrenceSeries is a template that generates slots or events.
// DaysOfWeek holds time.Weekday values (0 = Sunday ... 6 = Saturday).
type RecurrenceSeries struct {
	ID              int64
	Kind            OccurrenceKind
	Title           string
	Description     *string
	Pattern         Pattern
	DaysOfWeek      []int
	TimeOfDay       types.TimeString
	DurationMinutes int
	WindowStart     time.Time
	WindowEnd       *time.Time
	MaxOccurrences  *int
	Capacity        int
	Category        SlotCategory // slots only
	Instructor      *string
	Location        *string
	IsActive        bool
	CreatedBy       int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasWeekday returns true if wd is one of the series days
func (s *RecurrenceSeries) HasWeekday(wd time.Weekday) bool {
	for _, d := range s.DaysOfWeek {
		if time.Weekday(d) == wd {
			return true
		}
	}
	return false
}

// Duration returns the length of one occurrence
func (s *RecurrenceSeries) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}
