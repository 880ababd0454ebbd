package slots

import (
	"fmt"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/slots/models"
)

func validateCreate(req *models.CreateSlotRequest, now time.Time) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", ErrInvalidInput)
	}
	if len(req.Title) > domain.MaxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, domain.MaxTitleLength)
	}
	if !domain.SlotCategory(req.Category).IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, req.Category)
	}
	if req.Capacity < 1 || req.Capacity > domain.MaxSlotCapacity {
		return fmt.Errorf("%w: capacity must be between 1 and %d", ErrInvalidInput, domain.MaxSlotCapacity)
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() || !req.EndTime.After(req.StartTime) {
		return domain.ErrInvalidTimeRange
	}
	minutes := req.EndTime.Sub(req.StartTime).Minutes()
	if minutes < domain.MinDurationMinutes || minutes > domain.MaxDurationMinutes {
		return fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}
	if !req.StartTime.After(now) {
		return domain.ErrSlotInPast
	}
	return nil
}

func toDomainFilter(req *models.ListSlotsRequest) (domain.SlotFilter, error) {
	filter := domain.SlotFilter{From: req.From, To: req.To}
	if req.From != nil && req.To != nil && !req.To.After(*req.From) {
		return filter, domain.ErrInvalidTimeRange
	}
	if req.Category != nil {
		category := domain.SlotCategory(*req.Category)
		if !category.IsValid() {
			return filter, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *req.Category)
		}
		filter.Category = &category
	}
	return filter, nil
}
