package list_rsvps

import (
	"context"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/rsvp/models"
)

type RSVPService interface {
	ListByEvent(ctx context.Context, eventID int64) (*models.RSVPListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
