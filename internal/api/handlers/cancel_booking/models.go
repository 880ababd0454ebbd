package cancel_booking

import (
	"time"

	cancelBooking "github.com/m04kA/RidingSchool-SchedulingService/internal/usecase/cancel_booking"
)

// CancelBookingRequest HTTP request model
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// CancelBookingResponse HTTP response model
type CancelBookingResponse struct {
	ID                 int64   `json:"id"`
	SlotID             int64   `json:"slotId"`
	MemberID           int64   `json:"memberId"`
	State              string  `json:"state"`
	CancelledAt        string  `json:"cancelledAt"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CancelBookingRequest) ToUseCaseRequest(bookingID, actorID int64, isStaff bool) *cancelBooking.Request {
	return &cancelBooking.Request{
		BookingID:    bookingID,
		ActorID:      actorID,
		ActorIsStaff: isStaff,
		Reason:       r.Reason,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelBookingResponse {
	return &CancelBookingResponse{
		ID:                 resp.ID,
		SlotID:             resp.SlotID,
		MemberID:           resp.MemberID,
		State:              resp.State,
		CancelledAt:        resp.CancelledAt.Format(time.RFC3339),
		CancellationReason: resp.CancellationReason,
	}
}
