package delete_series

import "context"

type RecurrenceService interface {
	DeleteSeries(ctx context.Context, seriesID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
