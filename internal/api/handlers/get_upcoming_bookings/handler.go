package get_upcoming_bookings

import (
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/middleware"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

const (
	msgInvalidMemberID = "некорректный ID участника"
	msgMissingUserID   = "отсутствует ID пользователя"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/members/{memberId}/bookings/upcoming
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	memberID, err := handlers.PathID(r, "memberId")
	if err != nil {
		h.logger.Warn("GET /members/{id}/bookings/upcoming - Invalid member ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidMemberID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	if memberID != userID && !middleware.IsStaff(r.Context()) {
		h.logger.Warn("GET /members/{id}/bookings/upcoming - Access denied: member_id=%d, user_id=%d", memberID, userID)
		handlers.RespondDomainError(w, domain.ErrNotBookingOwner)
		return
	}

	result, err := h.service.ListUpcomingForMember(r.Context(), memberID)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /members/{id}/bookings/upcoming - Failed: member_id=%d, error=%v", memberID, err)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
