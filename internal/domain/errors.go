package domain

import "errors"

// Error kinds. Every specific error below wraps exactly one of them, so callers
// can branch either on the kind or on the specific error with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrTemporalViolation   = errors.New("temporal violation")
	ErrStateConflict       = errors.New("state conflict")
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrInvalidInput        = errors.New("invalid input")
)

// Kind is the transport-neutral name of an error kind
type Kind string

const (
	KindNotFound            Kind = "NotFound"
	KindCapacityExceeded    Kind = "CapacityExceeded"
	KindTemporalViolation   Kind = "TemporalViolation"
	KindStateConflict       Kind = "StateConflict"
	KindAuthorizationDenied Kind = "AuthorizationDenied"
	KindInvalidInput        Kind = "InvalidInput"
	KindInternal            Kind = "Internal"
)

// Error is a named business error of a known kind
type Error struct {
	kind   error
	reason string
	msg    string
}

func newError(kind error, reason, msg string) *Error {
	return &Error{kind: kind, reason: reason, msg: msg}
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// Reason returns the stable machine-readable name, e.g. "SlotFull"
func (e *Error) Reason() string { return e.reason }

// Slots and bookings
var (
	ErrSlotNotFound           = newError(ErrNotFound, "SlotNotFound", "slot not found")
	ErrSlotFull               = newError(ErrCapacityExceeded, "SlotFull", "slot is fully booked")
	ErrSlotInPast             = newError(ErrTemporalViolation, "SlotInPast", "slot has already started")
	ErrMemberScheduleConflict = newError(ErrStateConflict, "MemberScheduleConflict", "member already has a booking at this time")
	ErrSlotHasBookings        = newError(ErrStateConflict, "SlotHasBookings", "slot has confirmed bookings, use force to delete")
	ErrCapacityBelowOccupancy = newError(ErrStateConflict, "CapacityBelowOccupancy", "capacity cannot be lower than current occupancy")

	ErrBookingNotFound     = newError(ErrNotFound, "BookingNotFound", "booking not found")
	ErrNotConfirmed        = newError(ErrStateConflict, "NotConfirmed", "booking is not confirmed")
	ErrSameSlot            = newError(ErrStateConflict, "SameSlot", "booking is already in this slot")
	ErrTooLateToReschedule = newError(ErrTemporalViolation, "TooLateToReschedule", "lessons cannot be rescheduled within 24 hours of the start")
	ErrTargetSlotFull      = newError(ErrCapacityExceeded, "TargetSlotFull", "target slot is fully booked")
	ErrTargetSlotInPast    = newError(ErrTemporalViolation, "TargetSlotInPast", "target slot is in the past or starts within 24 hours")
	ErrAlreadyCancelled    = newError(ErrStateConflict, "AlreadyCancelled", "booking is already cancelled")
	ErrTooLateToCancel     = newError(ErrTemporalViolation, "TooLateToCancel", "lessons cannot be cancelled within 24 hours of the start")
	ErrNotBookingOwner     = newError(ErrAuthorizationDenied, "NotBookingOwner", "booking belongs to another member")
	ErrStaffOnly           = newError(ErrAuthorizationDenied, "StaffOnly", "operation is restricted to staff")
)

// Series, events and RSVPs
var (
	ErrSeriesNotFound   = newError(ErrNotFound, "SeriesNotFound", "recurrence series not found")
	ErrSeriesInactive   = newError(ErrStateConflict, "SeriesInactive", "recurrence series is inactive")
	ErrEventNotFound    = newError(ErrNotFound, "EventNotFound", "event not found")
	ErrEventFull        = newError(ErrCapacityExceeded, "EventFull", "event is full")
	ErrEventInPast      = newError(ErrTemporalViolation, "EventInPast", "event has already started")
	ErrRSVPNotFound     = newError(ErrNotFound, "RSVPNotFound", "rsvp not found")
	ErrOccurrenceKind   = newError(ErrInvalidInput, "UnknownOccurrenceKind", "unknown occurrence kind")
	ErrInvalidTimeRange = newError(ErrInvalidInput, "InvalidTimeRange", "end time must be after start time")
)

// ErrOccupancyUnderflow reports a release on a slot whose occupancy is already zero.
// It carries no kind: the counter disagrees with the bookings, which is an internal fault.
var ErrOccupancyUnderflow = errors.New("slot occupancy is already zero")

// KindOf returns the kind of err, KindInternal when err carries none
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrCapacityExceeded):
		return KindCapacityExceeded
	case errors.Is(err, ErrTemporalViolation):
		return KindTemporalViolation
	case errors.Is(err, ErrStateConflict):
		return KindStateConflict
	case errors.Is(err, ErrAuthorizationDenied):
		return KindAuthorizationDenied
	case errors.Is(err, ErrInvalidInput):
		return KindInvalidInput
	default:
		return KindInternal
	}
}

// ReasonOf returns the specific error name, or the kind when err is not a named error
func ReasonOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason()
	}
	return string(KindOf(err))
}
