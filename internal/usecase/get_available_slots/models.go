package get_available_slots

import (
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/pkg/types"
)

// Request модель запроса на получение слотов, доступных участнику в указанный день
type Request struct {
	MemberID int64   // ID участника
	Date     string  // День в часовом поясе школы, YYYY-MM-DD
	Category *string // Фильтр по категории (опционально)
}

// Response модель ответа со списком слотов дня
type Response struct {
	Date     string // День, на который запрашивались слоты
	MemberID int64
	Slots    []Slot // Только слоты, в которые участник может записаться
}

// Slot модель слота, доступного для записи
type Slot struct {
	ID              int64
	Title           string
	Category        string
	StartTime       time.Time
	LocalTime       types.TimeString // Время начала в часовом поясе школы ("10:00")
	DurationMinutes int
	AvailableSpots  int
	TotalSpots      int
	Instructor      *string
	Location        *string
}
