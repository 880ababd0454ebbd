package create_series

import (
	"context"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/recurrence/models"
)

type RecurrenceService interface {
	CreateSeries(ctx context.Context, req *models.CreateSeriesRequest) (*models.CreateSeriesResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
