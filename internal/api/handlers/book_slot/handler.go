package book_slot

import (
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/middleware"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	bookSlot "github.com/m04kA/RidingSchool-SchedulingService/internal/usecase/book_slot"
)

const (
	msgInvalidSlotID      = "некорректный ID слота"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
)

type Handler struct {
	useCase BookSlotUseCase
	logger  Logger
}

func NewHandler(useCase BookSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/slots/{slotId}/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.PathID(r, "slotId")
	if err != nil {
		h.logger.Warn("POST /slots/{id}/bookings - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Тело необязательно: без него участник бронирует для себя
	var req BookSlotRequest
	if err := handlers.DecodeOptionalJSON(r, &req); err != nil {
		h.logger.Warn("POST /slots/{id}/bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	memberID := userID
	if req.MemberID != nil {
		memberID = *req.MemberID
	}
	if memberID != userID && !middleware.IsStaff(r.Context()) {
		h.logger.Warn("POST /slots/{id}/bookings - Booking for another member denied: user_id=%d, member_id=%d", userID, memberID)
		handlers.RespondDomainError(w, domain.ErrStaffOnly)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &bookSlot.Request{
		SlotID:   slotID,
		MemberID: memberID,
		ActorID:  userID,
	})
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("POST /slots/{id}/bookings - Failed to book: slot_id=%d, member_id=%d, error=%v", slotID, memberID, err)
		} else {
			h.logger.Warn("POST /slots/{id}/bookings - Rejected: slot_id=%d, member_id=%d, reason=%s", slotID, memberID, domain.ReasonOf(err))
		}
		return
	}

	h.logger.Info("POST /slots/{id}/bookings - Booked: booking_id=%d, slot_id=%d, member_id=%d", result.ID, slotID, memberID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
