package rsvp

import (
	"fmt"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/rsvp/models"
)

func validateRespond(req *models.RespondRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", ErrInvalidInput)
	}
	if req.EventID <= 0 || req.MemberID <= 0 {
		return fmt.Errorf("%w: eventID and memberID must be positive", ErrInvalidInput)
	}
	if !domain.RSVPStatus(req.Status).IsValid() {
		return fmt.Errorf("%w: status must be one of attending, not_attending, maybe", ErrInvalidInput)
	}
	if req.GuestCount < 0 || req.GuestCount > domain.MaxGuestCount {
		return fmt.Errorf("%w: guestCount must be between 0 and %d", ErrInvalidInput, domain.MaxGuestCount)
	}
	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}
	return nil
}
