package delete_event

import (
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

const msgInvalidEventID = "некорректный ID события"

type Handler struct {
	service RecurrenceService
	logger  Logger
}

func NewHandler(service RecurrenceService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/events/{eventId}
// Ответы участников удаляются вместе с событием
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	eventID, err := handlers.PathID(r, "eventId")
	if err != nil {
		h.logger.Warn("DELETE /events/{id} - Invalid event ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEventID)
		return
	}

	if err := h.service.DeleteOccurrence(r.Context(), domain.OccurrenceEvent, eventID, true); err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("DELETE /events/{id} - Failed: event_id=%d, error=%v", eventID, err)
		}
		return
	}

	h.logger.Info("DELETE /events/{id} - Event deleted: event_id=%d", eventID)
	w.WriteHeader(http.StatusNoContent)
}
