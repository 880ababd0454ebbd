package delete_series

import (
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
)

const msgInvalidSeriesID = "некорректный ID серии"

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

// Handle DELETE /api/v1/series/{seriesId}
// Удаляет все вхождения серии и деактивирует её
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	seriesID, err := handlers.PathID(r, "seriesId")
	if err != nil {
		h.logger.Warn("DELETE /series/{id} - Invalid series ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSeriesID)
		return
	}

	if err := h.service.DeleteSeries(r.Context(), seriesID); err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("DELETE /series/{id} - Failed: series_id=%d, error=%v", seriesID, err)
		}
		return
	}

	h.logger.Info("DELETE /series/{id} - Series deleted: series_id=%d", seriesID)
	w.WriteHeader(http.StatusNoContent)
}
