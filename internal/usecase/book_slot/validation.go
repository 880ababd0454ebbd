package book_slot

import (
	"fmt"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", ErrInvalidInput)
	}
	if req.SlotID <= 0 {
		return fmt.Errorf("%w: slotID must be positive", ErrInvalidInput)
	}
	if req.MemberID <= 0 {
		return fmt.Errorf("%w: memberID must be positive", ErrInvalidInput)
	}
	if req.ActorID <= 0 {
		return fmt.Errorf("%w: actorID must be positive", ErrInvalidInput)
	}
	return nil
}

// validateSlot проверяет, что в слот ещё можно записаться
func validateSlot(slot *domain.Slot, now time.Time) error {
	if !slot.StartTime.After(now) {
		return domain.ErrSlotInPast
	}
	if slot.IsFull() {
		return domain.ErrSlotFull
	}
	return nil
}
