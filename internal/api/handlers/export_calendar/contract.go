package export_calendar

import (
	"context"

	bookingModels "github.com/m04kA/RidingSchool-SchedulingService/internal/service/bookings/models"
	eventModels "github.com/m04kA/RidingSchool-SchedulingService/internal/service/events/models"
	recurrenceModels "github.com/m04kA/RidingSchool-SchedulingService/internal/service/recurrence/models"
)

type BookingService interface {
	GetByID(ctx context.Context, id int64) (*bookingModels.BookingResponse, error)
}

type EventService interface {
	GetByID(ctx context.Context, id int64) (*eventModels.EventResponse, error)
}

type RecurrenceService interface {
	CalendarEntry(ctx context.Context, seriesID int64) (*recurrenceModels.SeriesCalendar, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
