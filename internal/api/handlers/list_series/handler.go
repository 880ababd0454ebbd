package list_series

import (
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
)

const msgInvalidActive = "параметр active должен быть true или false"

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

// Handle GET /api/v1/series?active=true
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := handlers.QueryBool(r, "active")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidActive)
		return
	}

	result, err := h.service.ListSeries(r.Context(), activeOnly)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /series - Failed: error=%v", err)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
