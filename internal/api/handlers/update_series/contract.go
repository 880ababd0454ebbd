package update_series

import (
	"context"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/recurrence/models"
)

type RecurrenceService interface {
	UpdateSeries(ctx context.Context, seriesID int64, req *models.UpdateSeriesRequest) (int, error)
	GetSeries(ctx context.Context, seriesID int64) (*models.SeriesResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
