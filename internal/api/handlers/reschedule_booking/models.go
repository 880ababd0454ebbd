package reschedule_booking

import (
	"time"

	rescheduleBooking "github.com/m04kA/RidingSchool-SchedulingService/internal/usecase/reschedule_booking"
)

// RescheduleRequest HTTP request model
type RescheduleRequest struct {
	NewSlotID int64 `json:"newSlotId"`
}

// RescheduleResponse HTTP response model
type RescheduleResponse struct {
	ID              int64  `json:"id"`
	MemberID        int64  `json:"memberId"`
	FromSlotID      int64  `json:"fromSlotId"`
	ToSlotID        int64  `json:"toSlotId"`
	RescheduleCount int    `json:"rescheduleCount"`
	SlotStart       string `json:"slotStart"`
	SlotEnd         string `json:"slotEnd"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleBooking.Response) *RescheduleResponse {
	return &RescheduleResponse{
		ID:              resp.ID,
		MemberID:        resp.MemberID,
		FromSlotID:      resp.FromSlotID,
		ToSlotID:        resp.ToSlotID,
		RescheduleCount: resp.RescheduleCount,
		SlotStart:       resp.SlotStart.Format(time.RFC3339),
		SlotEnd:         resp.SlotEnd.Format(time.RFC3339),
	}
}
