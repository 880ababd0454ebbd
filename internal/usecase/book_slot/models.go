package book_slot

import (
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

// Request модель запроса на бронирование места в слоте
type Request struct {
	SlotID   int64 // ID слота
	MemberID int64 // ID участника, для которого бронируется место
	ActorID  int64 // ID того, кто бронирует (участник или сотрудник)
}

// Response модель ответа с созданным бронированием
type Response struct {
	ID              int64
	SlotID          int64
	MemberID        int64
	BookedBy        int64
	State           string
	AttendanceState string
	BookedAt        time.Time

	SlotStart time.Time
	SlotEnd   time.Time
	Remaining int // Свободных мест в слоте после бронирования
}

func toResponse(b *domain.Booking, slot *domain.Slot) *Response {
	return &Response{
		ID:              b.ID,
		SlotID:          b.SlotID,
		MemberID:        b.MemberID,
		BookedBy:        b.BookedBy,
		State:           string(b.State),
		AttendanceState: string(b.AttendanceState),
		BookedAt:        b.BookedAt,
		SlotStart:       slot.StartTime,
		SlotEnd:         slot.EndTime,
		Remaining:       slot.Remaining(),
	}
}
