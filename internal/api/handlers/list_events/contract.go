package list_events

import (
	"context"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/events/models"
)

type EventService interface {
	List(ctx context.Context, from, to *time.Time) (*models.EventListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
