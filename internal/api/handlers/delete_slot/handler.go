package delete_slot

import (
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

const (
	msgInvalidSlotID = "некорректный ID слота"
	msgInvalidForce  = "параметр force должен быть true или false"
)

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

// Handle DELETE /api/v1/slots/{slotId}?force=true
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.PathID(r, "slotId")
	if err != nil {
		h.logger.Warn("DELETE /slots/{id} - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}
	force, err := handlers.QueryBool(r, "force")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidForce)
		return
	}

	if err := h.service.Delete(r.Context(), slotID, force); err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("DELETE /slots/{id} - Failed: slot_id=%d, error=%v", slotID, err)
		} else {
			h.logger.Warn("DELETE /slots/{id} - Rejected: slot_id=%d, reason=%s", slotID, domain.ReasonOf(err))
		}
		return
	}

	h.logger.Info("DELETE /slots/{id} - Slot deleted: slot_id=%d, force=%t", slotID, force)
	w.WriteHeader(http.StatusNoContent)
}
