package book_slot

import (
	"time"

	bookSlot "github.com/m04kA/RidingSchool-SchedulingService/internal/usecase/book_slot"
)

// BookSlotRequest HTTP request model, memberId задаёт только сотрудник
type BookSlotRequest struct {
	MemberID *int64 `json:"memberId,omitempty"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	ID              int64  `json:"id"`
	SlotID          int64  `json:"slotId"`
	MemberID        int64  `json:"memberId"`
	BookedBy        int64  `json:"bookedBy"`
	State           string `json:"state"`
	AttendanceState string `json:"attendanceState"`
	BookedAt        string `json:"bookedAt"`
	SlotStart       string `json:"slotStart"`
	SlotEnd         string `json:"slotEnd"`
	Remaining       int    `json:"remaining"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *bookSlot.Response) *BookingResponse {
	return &BookingResponse{
		ID:              resp.ID,
		SlotID:          resp.SlotID,
		MemberID:        resp.MemberID,
		BookedBy:        resp.BookedBy,
		State:           resp.State,
		AttendanceState: resp.AttendanceState,
		BookedAt:        resp.BookedAt.Format(time.RFC3339),
		SlotStart:       resp.SlotStart.Format(time.RFC3339),
		SlotEnd:         resp.SlotEnd.Format(time.RFC3339),
		Remaining:       resp.Remaining,
	}
}
