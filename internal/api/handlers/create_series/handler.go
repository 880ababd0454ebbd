package create_series

import (
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/middleware"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/recurrence/models"
)

const msgInvalidRequestBody = "некорректное тело запроса"

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

// Handle POST /api/v1/series
// Создаёт серию и сразу генерирует вхождения
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSeriesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /series - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.ActorID, _ = middleware.GetUserID(r.Context())

	result, err := h.service.CreateSeries(r.Context(), &req)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("POST /series - Failed to create series: error=%v", err)
		} else {
			h.logger.Warn("POST /series - Rejected: reason=%s, error=%v", domain.ReasonOf(err), err)
		}
		return
	}

	h.logger.Info("POST /series - Series created: series_id=%d, occurrences=%d", result.Series.ID, result.Created)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
