package update_occurrence

import (
	"context"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/recurrence/models"
)

type RecurrenceService interface {
	UpdateOccurrence(ctx context.Context, kind domain.OccurrenceKind, id int64, req *models.UpdateOccurrenceRequest) (*models.OccurrenceResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
