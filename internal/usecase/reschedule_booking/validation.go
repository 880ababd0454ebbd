package reschedule_booking

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
	if req.NewSlotID <= 0 {
		return fmt.Errorf("%w: newSlotID must be positive", ErrInvalidInput)
	}
	if req.ActorID <= 0 {
		return fmt.Errorf("%w: actorID must be positive", ErrInvalidInput)
	}
	return nil
}

// validateBooking проверяет владельца и состояние переносимого бронирования
func validateBooking(b *domain.Booking, req *Request) error {
	if !req.ActorIsStaff && b.MemberID != req.ActorID {
		return domain.ErrNotBookingOwner
	}
	if !b.IsConfirmed() {
		return domain.ErrNotConfirmed
	}
	if b.SlotID == req.NewSlotID {
		return domain.ErrSameSlot
	}
	return nil
}

// validateSlots применяет правило 24 часов к обоим слотам и проверяет место в целевом
func validateSlots(current, target *domain.Slot, now time.Time) error {
	if !domain.ChangeAllowed(current.StartTime, now) {
		return domain.ErrTooLateToReschedule
	}
	if !domain.ChangeAllowed(target.StartTime, now) {
		return domain.ErrTargetSlotInPast
	}
	if target.IsFull() {
		return domain.ErrTargetSlotFull
	}
	return nil
}
