package respond_rsvp

import (
	"context"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/rsvp/models"
)

type RSVPService interface {
	Respond(ctx context.Context, req *models.RespondRequest) (*models.RespondResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
