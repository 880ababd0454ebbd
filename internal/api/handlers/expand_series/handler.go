package expand_series

import (
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
)

const msgInvalidSeriesID = "некорректный ID серии"

// ExpandResponse HTTP response model
type ExpandResponse struct {
	SeriesID int64 `json:"seriesId"`
	Created  int   `json:"created"`
}

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

// Handle POST /api/v1/series/{seriesId}/expand
// Повторный вызов не создаёт дубликатов
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	seriesID, err := handlers.PathID(r, "seriesId")
	if err != nil {
		h.logger.Warn("POST /series/{id}/expand - Invalid series ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSeriesID)
		return
	}

	created, err := h.service.Expand(r.Context(), seriesID)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("POST /series/{id}/expand - Failed: series_id=%d, error=%v", seriesID, err)
		}
		return
	}

	h.logger.Info("POST /series/{id}/expand - Expanded: series_id=%d, created=%d", seriesID, created)
	handlers.RespondJSON(w, http.StatusOK, ExpandResponse{SeriesID: seriesID, Created: created})
}
