package domain

import "time"

// ChangeLockWindow is the minimum lead time for rescheduling or cancelling a lesson
const ChangeLockWindow = 24 * time.Hour

// Recurrence expansion limits
const (
	MaxExpansionCandidates = 1000
	MaxExpansionDays       = 36600 // ~100 years
)

// Business validation constants
const (
	MinDurationMinutes          = 5
	MaxDurationMinutes          = 480 // 8 hours
	MaxSlotCapacity             = 100
	MaxEventCapacity            = 10000
	MaxGuestCount               = 20
	MaxTitleLength              = 200
	MaxNotesLength              = 500
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
