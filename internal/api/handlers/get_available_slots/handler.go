package get_available_slots

import (
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/middleware"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

const (
	msgInvalidMemberID = "некорректный ID участника"
	msgMissingDate     = "дата обязательна"
	msgMissingUserID   = "отсутствует ID пользователя"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/members/{memberId}/available-slots
// Query params: date (required, YYYY-MM-DD), category (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	memberID, err := handlers.PathID(r, "memberId")
	if err != nil {
		h.logger.Warn("GET /members/{id}/available-slots - Invalid member ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidMemberID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	if memberID != userID && !middleware.IsStaff(r.Context()) {
		handlers.RespondDomainError(w, domain.ErrNotBookingOwner)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		h.logger.Warn("GET /members/{id}/available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), ToUseCaseRequest(memberID, date, r.URL.Query().Get("category")))
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /members/{id}/available-slots - Failed: member_id=%d, date=%s, error=%v", memberID, date, err)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
