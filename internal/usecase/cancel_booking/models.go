package cancel_booking

import "time"

// Request модель запроса на отмену бронирования
type Request struct {
	BookingID    int64
	ActorID      int64
	ActorIsStaff bool
	Reason       *string // Причина отмены (опционально)
}

// Response модель ответа с отменённым бронированием
type Response struct {
	ID                 int64
	SlotID             int64
	MemberID           int64
	State              string
	CancelledAt        time.Time
	CancellationReason *string
}
