package cancel_rsvp

import (
	"context"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/rsvp/models"
)

type RSVPService interface {
	Cancel(ctx context.Context, eventID, memberID int64) (*models.CancelResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
