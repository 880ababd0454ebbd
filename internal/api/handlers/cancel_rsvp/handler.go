package cancel_rsvp

import (
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/middleware"
)

const (
	msgInvalidEventID = "некорректный ID события"
	msgMissingUserID  = "отсутствует ID пользователя"
)

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

// Handle DELETE /api/v1/events/{eventId}/rsvp
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	eventID, err := handlers.PathID(r, "eventId")
	if err != nil {
		h.logger.Warn("DELETE /events/{id}/rsvp - Invalid event ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEventID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	result, err := h.service.Cancel(r.Context(), eventID, userID)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("DELETE /events/{id}/rsvp - Failed: event_id=%d, member_id=%d, error=%v", eventID, userID, err)
		}
		return
	}

	h.logger.Info("DELETE /events/{id}/rsvp - Cancelled: event_id=%d, member_id=%d, promoted=%d", eventID, userID, len(result.Promoted))
	handlers.RespondJSON(w, http.StatusOK, result)
}
