package update_occurrence

import (
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/recurrence/models"
)

const (
	msgInvalidID          = "некорректный ID"
	msgInvalidRequestBody = "некорректное тело запроса"
)

// Handler изменяет одно вхождение: слот (PATCH /slots/{slotId}) или событие (PATCH /events/{eventId})
type Handler struct {
	service RecurrenceService
	kind    domain.OccurrenceKind
	param   string
	logger  Logger
}

func NewHandler(service RecurrenceService, kind domain.OccurrenceKind, logger Logger) *Handler {
	param := "slotId"
	if kind == domain.OccurrenceEvent {
		param = "eventId"
	}
	return &Handler{
		service: service,
		kind:    kind,
		param:   param,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/slots/{slotId} и /api/v1/events/{eventId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, h.param)
	if err != nil {
		h.logger.Warn("PATCH %s - Invalid ID: %v", h.kind, err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	var req models.UpdateOccurrenceRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH %s - Invalid request body: %v", h.kind, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.UpdateOccurrence(r.Context(), h.kind, id, &req)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("PATCH %s - Failed: id=%d, error=%v", h.kind, id, err)
		} else {
			h.logger.Warn("PATCH %s - Rejected: id=%d, reason=%s", h.kind, id, domain.ReasonOf(err))
		}
		return
	}

	h.logger.Info("PATCH %s - Occurrence updated: id=%d", h.kind, id)
	handlers.RespondJSON(w, http.StatusOK, result)
}
