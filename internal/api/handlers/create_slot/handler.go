package create_slot

import (
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/middleware"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/slots/models"
)

const msgInvalidRequestBody = "некорректное тело запроса"

type Handler struct {
	service SlotService
	logger  Logger
}

func NewHandler(service SlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.ActorID, _ = middleware.GetUserID(r.Context())

	slot, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("POST /slots - Failed to create slot: error=%v", err)
		} else {
			h.logger.Warn("POST /slots - Rejected: reason=%s, error=%v", domain.ReasonOf(err), err)
		}
		return
	}

	h.logger.Info("POST /slots - Slot created: slot_id=%d, start=%s", slot.ID, slot.StartTime)
	handlers.RespondJSON(w, http.StatusCreated, slot)
}
