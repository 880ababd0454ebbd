package get_available_slots

import (
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/types"
)

// filterBookable оставляет слоты, в которые участник может записаться прямо сейчас:
// слот ещё не начался, есть свободное место и нет пересечения с его подтверждёнными занятиями
func filterBookable(slots []*domain.Slot, booked []*domain.BookingWithSlot, now time.Time, loc *time.Location) []Slot {
	result := make([]Slot, 0, len(slots))
	for _, s := range slots {
		if !s.StartTime.After(now) || s.IsFull() {
			continue
		}
		if conflictsWith(s, booked) {
			continue
		}
		result = append(result, toSlot(s, loc))
	}
	return result
}

// conflictsWith сообщает, что слот пересекается с одним из занятий участника (включая сам слот)
func conflictsWith(slot *domain.Slot, booked []*domain.BookingWithSlot) bool {
	for _, b := range booked {
		if b.Slot.ID == slot.ID || slot.Overlaps(&b.Slot) {
			return true
		}
	}
	return false
}

func toSlot(s *domain.Slot, loc *time.Location) Slot {
	return Slot{
		ID:              s.ID,
		Title:           s.Title,
		Category:        string(s.Category),
		StartTime:       s.StartTime,
		LocalTime:       types.NewTimeString(s.StartTime.In(loc)),
		DurationMinutes: int(s.Duration() / time.Minute),
		AvailableSpots:  s.Remaining(),
		TotalSpots:      s.Capacity,
		Instructor:      s.Instructor,
		Location:        s.Location,
	}
}
