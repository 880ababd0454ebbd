package update_series

import (
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/recurrence/models"
)

const (
	msgInvalidSeriesID    = "некорректный ID серии"
	msgInvalidRequestBody = "некорректное тело запроса"
)

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

// Handle PATCH /api/v1/series/{seriesId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	seriesID, err := handlers.PathID(r, "seriesId")
	if err != nil {
		h.logger.Warn("PATCH /series/{id} - Invalid series ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSeriesID)
		return
	}

	var req models.UpdateSeriesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /series/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	created, err := h.service.UpdateSeries(r.Context(), seriesID, &req)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("PATCH /series/{id} - Failed: series_id=%d, error=%v", seriesID, err)
		} else {
			h.logger.Warn("PATCH /series/{id} - Rejected: series_id=%d, reason=%s", seriesID, domain.ReasonOf(err))
		}
		return
	}

	series, err := h.service.GetSeries(r.Context(), seriesID)
	if err != nil {
		h.logger.Error("PATCH /series/{id} - Failed to reload series: series_id=%d, error=%v", seriesID, err)
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("PATCH /series/{id} - Series updated: series_id=%d, created=%d", seriesID, created)
	handlers.RespondJSON(w, http.StatusOK, UpdateSeriesResponse{Series: series, Created: created})
}
