package mark_attendance

import (
	"context"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/bookings/models"
)

type BookingService interface {
	MarkAttendance(ctx context.Context, bookingID int64, req *models.MarkAttendanceRequest) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
