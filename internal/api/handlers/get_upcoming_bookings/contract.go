package get_upcoming_bookings

import (
	"context"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/bookings/models"
)

type BookingService interface {
	ListUpcomingForMember(ctx context.Context, memberID int64) (*models.UpcomingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
