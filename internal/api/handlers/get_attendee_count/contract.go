package get_attendee_count

import (
	"context"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/rsvp/models"
)

type RSVPService interface {
	Attendees(ctx context.Context, eventID int64) (*models.AttendeeCountResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
