package delete_event

import (
	"context"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

type RecurrenceService interface {
	DeleteOccurrence(ctx context.Context, kind domain.OccurrenceKind, id int64, force bool) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
