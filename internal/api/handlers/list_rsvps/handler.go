package list_rsvps

import (
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
)

const msgInvalidEventID = "некорректный ID события"

type Handler struct {
	service RSVPService
	logger  Logger
}

func NewHandler(service RSVPService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/events/{eventId}/rsvps
// Список ответов и очередь ожидания, только для сотрудников
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	eventID, err := handlers.PathID(r, "eventId")
	if err != nil {
		h.logger.Warn("GET /events/{id}/rsvps - Invalid event ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEventID)
		return
	}

	result, err := h.service.ListByEvent(r.Context(), eventID)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /events/{id}/rsvps - Failed: event_id=%d, error=%v", eventID, err)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
