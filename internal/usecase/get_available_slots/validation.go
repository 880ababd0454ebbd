package get_available_slots

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
	if req.MemberID <= 0 {
		return fmt.Errorf("%w: memberID must be positive", ErrInvalidInput)
	}
	if req.Category != nil && !domain.SlotCategory(*req.Category).IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *req.Category)
	}
	return nil
}

// parseDay возвращает границы дня [start, end) в часовом поясе loc
func parseDay(date string, loc *time.Location) (time.Time, time.Time, error) {
	day, err := time.ParseInLocation(domain.DateFormat, date, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return day, day.AddDate(0, 0, 1), nil
}

// validateDate проверяет, что день ещё не закончился
func validateDate(dayEnd, now time.Time) error {
	if !dayEnd.After(now) {
		return ErrDateInPast
	}
	return nil
}
