package create_event

import (
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/middleware"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/events/models"
)

const msgInvalidRequestBody = "некорректное тело запроса"

type Handler struct {
	service EventService
	logger  Logger
}

func NewHandler(service EventService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/events
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEventRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /events - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.ActorID, _ = middleware.GetUserID(r.Context())

	event, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("POST /events - Failed to create event: error=%v", err)
		} else {
			h.logger.Warn("POST /events - Rejected: reason=%s, error=%v", domain.ReasonOf(err), err)
		}
		return
	}

	h.logger.Info("POST /events - Event created: event_id=%d", event.ID)
	handlers.RespondJSON(w, http.StatusCreated, event)
}
