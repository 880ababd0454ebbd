package respond_rsvp

import (
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/middleware"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/rsvp/models"
)

const (
	msgInvalidEventID     = "некорректный ID события"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
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

// Handle PUT /api/v1/events/{eventId}/rsvp
// Повторный ответ того же участника заменяет предыдущий
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	eventID, err := handlers.PathID(r, "eventId")
	if err != nil {
		h.logger.Warn("PUT /events/{id}/rsvp - Invalid event ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEventID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.RespondRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /events/{id}/rsvp - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.EventID = eventID
	req.MemberID = userID

	result, err := h.service.Respond(r.Context(), &req)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("PUT /events/{id}/rsvp - Failed: event_id=%d, member_id=%d, error=%v", eventID, userID, err)
		} else {
			h.logger.Warn("PUT /events/{id}/rsvp - Rejected: event_id=%d, member_id=%d, reason=%s", eventID, userID, domain.ReasonOf(err))
		}
		return
	}

	h.logger.Info("PUT /events/{id}/rsvp - Stored: event_id=%d, member_id=%d, status=%s, promoted=%d",
		eventID, userID, result.RSVP.Status, len(result.Promoted))
	handlers.RespondJSON(w, http.StatusOK, result)
}
