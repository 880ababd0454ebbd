package reschedule_booking

import "time"

// Request модель запроса на перенос бронирования в другой слот
type Request struct {
	BookingID    int64
	NewSlotID    int64
	ActorID      int64
	ActorIsStaff bool
}

// Response модель ответа с перенесённым бронированием
type Response struct {
	ID              int64
	MemberID        int64
	FromSlotID      int64
	ToSlotID        int64
	RescheduleCount int
	SlotStart       time.Time
	SlotEnd         time.Time
}
