package cancel_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", ErrInvalidInput)
	}
	if req.BookingID <= 0 {
		return fmt.Errorf("%w: bookingID must be positive", ErrInvalidInput)
	}
	if req.ActorID <= 0 {
		return fmt.Errorf("%w: actorID must be positive", ErrInvalidInput)
	}
	if req.Reason != nil && len(*req.Reason) > domain.MaxCancellationReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}
	return nil
}

func validateBooking(b *domain.Booking, req *Request) error {
	if !req.ActorIsStaff && b.MemberID != req.ActorID {
		return domain.ErrNotBookingOwner
	}
	switch b.State {
	case domain.BookingConfirmed:
		return nil
	case domain.BookingCancelled:
		return domain.ErrAlreadyCancelled
	default:
		return domain.ErrNotConfirmed
	}
}

func validateSlot(slot *domain.Slot, now time.Time) error {
	if !domain.ChangeAllowed(slot.StartTime, now) {
		return domain.ErrTooLateToCancel
	}
	return nil
}
