package list_series

import (
	"context"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/recurrence/models"
)

type RecurrenceService interface {
	ListSeries(ctx context.Context, activeOnly bool) (*models.SeriesListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
