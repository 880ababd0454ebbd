package expand_series

import "context"

type RecurrenceService interface {
	Expand(ctx context.Context, seriesID int64) (int, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
