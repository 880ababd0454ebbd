package domain

import "time"

// BookingState is the lifecycle state of a booking
type BookingState string

const (
	BookingConfirmed BookingState = "confirmed"
	BookingCancelled BookingState = "cancelled"
	// BookingCompleted is part of the stored model; attendance marking never sets it
	BookingCompleted BookingState = "completed"
)

// AttendanceState is set by staff after the lesson
type AttendanceState string

const (
	AttendancePending AttendanceState = "pending"
	AttendancePresent AttendanceState = "present"
	AttendanceAbsent  AttendanceState = "absent"
	AttendanceLate    AttendanceState = "late"
)

// IsValid returns true for known attendance states
func (a AttendanceState) IsValid() bool {
	switch a {
	case AttendancePending, AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	}
	return false
}

// Booking is one member's claim on one seat of a slot
type Booking struct {
	ID       int64
	SlotID   int64
	MemberID int64
	BookedBy int64
	State    BookingState

	AttendanceState AttendanceState
	AttendanceNotes *string

	BookedAt           time.Time
	CancelledAt        *time.Time
	CancellationReason *string

	// Provenance of the last reschedule
	RescheduleCount int
	RescheduledFrom *int64
	RescheduledTo   *int64

	UpdatedAt time.Time
}

// IsConfirmed returns true if the booking holds a seat
func (b *Booking) IsConfirmed() bool {
	return b.State == BookingConfirmed
}

// IsCancelled returns true if the booking has been cancelled
func (b *Booking) IsCancelled() bool {
	return b.State == BookingCancelled
}

// BookingWithSlot is a booking joined with its current slot
type BookingWithSlot struct {
	Booking Booking
	Slot    Slot
}
