package recurrence

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/recurrence/models"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/types"
)

func parseDate(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(domain.DateFormat, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrInvalidInput, value)
	}
	return t, nil
}

func normalizeDays(days []int) ([]int, error) {
	seen := make(map[int]bool, len(days))
	result := make([]int, 0, len(days))
	for _, d := range days {
		if d < 0 || d > 6 {
			return nil, fmt.Errorf("%w: day of week %d out of range 0..6", ErrInvalidInput, d)
		}
		if !seen[d] {
			seen[d] = true
			result = append(result, d)
		}
	}
	sort.Ints(result)
	return result, nil
}

func toDomainSeries(req *models.CreateSeriesRequest, loc *time.Location) (*domain.RecurrenceSeries, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	windowStart, err := parseDate(req.WindowStart, loc)
	if err != nil {
		return nil, err
	}
	days, err := normalizeDays(req.DaysOfWeek)
	if err != nil {
		return nil, err
	}

	series := &domain.RecurrenceSeries{
		Kind:            domain.OccurrenceKind(req.Kind),
		Title:           req.Title,
		Description:     req.Description,
		Pattern:         domain.Pattern(req.Pattern),
		DaysOfWeek:      days,
		TimeOfDay:       types.TimeString(req.TimeOfDay),
		DurationMinutes: req.DurationMinutes,
		WindowStart:     windowStart,
		MaxOccurrences:  req.MaxOccurrences,
		Capacity:        req.Capacity,
		Category:        domain.SlotCategory(req.Category),
		Instructor:      req.Instructor,
		Location:        req.Location,
		IsActive:        true,
		CreatedBy:       req.ActorID,
	}
	if req.WindowEnd != nil {
		windowEnd, err := parseDate(*req.WindowEnd, loc)
		if err != nil {
			return nil, err
		}
		series.WindowEnd = &windowEnd
	}

	return series, nil
}

func applyUpdate(series *domain.RecurrenceSeries, req *models.UpdateSeriesRequest, loc *time.Location) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", ErrInvalidInput)
	}
	if req.Title != nil {
		series.Title = *req.Title
	}
	if req.Description != nil {
		series.Description = req.Description
	}
	if req.Pattern != nil {
		series.Pattern = domain.Pattern(*req.Pattern)
	}
	if req.DaysOfWeek != nil {
		days, err := normalizeDays(req.DaysOfWeek)
		if err != nil {
			return err
		}
		series.DaysOfWeek = days
	}
	if req.TimeOfDay != nil {
		series.TimeOfDay = types.TimeString(*req.TimeOfDay)
	}
	if req.DurationMinutes != nil {
		series.DurationMinutes = *req.DurationMinutes
	}
	if req.WindowEnd != nil {
		windowEnd, err := parseDate(*req.WindowEnd, loc)
		if err != nil {
			return err
		}
		series.WindowEnd = &windowEnd
	}
	if req.MaxOccurrences != nil {
		series.MaxOccurrences = req.MaxOccurrences
	}
	if req.Capacity != nil {
		series.Capacity = *req.Capacity
	}
	if req.Category != nil {
		series.Category = domain.SlotCategory(*req.Category)
	}
	if req.Instructor != nil {
		series.Instructor = req.Instructor
	}
	if req.Location != nil {
		series.Location = req.Location
	}
	if req.IsActive != nil {
		series.IsActive = *req.IsActive
	}
	return nil
}

func validateSeries(series *domain.RecurrenceSeries) error {
	if !series.Kind.IsValid() {
		return domain.ErrOccurrenceKind
	}
	if series.Title == "" || len(series.Title) > domain.MaxTitleLength {
		return fmt.Errorf("%w: title is required and must be at most %d characters", ErrInvalidInput, domain.MaxTitleLength)
	}
	if !series.Pattern.IsValid() {
		return fmt.Errorf("%w: unknown pattern %q", ErrInvalidInput, series.Pattern)
	}
	if series.Pattern.NeedsWeekdays() && len(series.DaysOfWeek) == 0 {
		return fmt.Errorf("%w: daysOfWeek is required for %s series", ErrInvalidInput, series.Pattern)
	}
	if err := series.TimeOfDay.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if series.DurationMinutes < domain.MinDurationMinutes || series.DurationMinutes > domain.MaxDurationMinutes {
		return fmt.Errorf("%w: durationMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}
	if series.WindowEnd != nil && series.WindowEnd.Before(series.WindowStart) {
		return domain.ErrInvalidTimeRange
	}
	if series.MaxOccurrences != nil && (*series.MaxOccurrences < 1 || *series.MaxOccurrences > domain.MaxExpansionCandidates) {
		return fmt.Errorf("%w: maxOccurrences must be between 1 and %d", ErrInvalidInput, domain.MaxExpansionCandidates)
	}

	switch series.Kind {
	case domain.OccurrenceSlot:
		if !series.Category.IsValid() {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, series.Category)
		}
		if series.Capacity < 1 || series.Capacity > domain.MaxSlotCapacity {
			return fmt.Errorf("%w: capacity must be between 1 and %d", ErrInvalidInput, domain.MaxSlotCapacity)
		}
	case domain.OccurrenceEvent:
		if series.Capacity < 0 || series.Capacity > domain.MaxEventCapacity {
			return fmt.Errorf("%w: capacity must be between 0 and %d", ErrInvalidInput, domain.MaxEventCapacity)
		}
	}
	return nil
}

func toSeriesResponse(series *domain.RecurrenceSeries, loc *time.Location, rrule string) models.SeriesResponse {
	resp := models.SeriesResponse{
		ID:              series.ID,
		Kind:            string(series.Kind),
		Title:           series.Title,
		Description:     series.Description,
		Pattern:         string(series.Pattern),
		DaysOfWeek:      series.DaysOfWeek,
		TimeOfDay:       series.TimeOfDay.String(),
		DurationMinutes: series.DurationMinutes,
		WindowStart:     series.WindowStart.In(loc).Format(domain.DateFormat),
		MaxOccurrences:  series.MaxOccurrences,
		Capacity:        series.Capacity,
		Category:        string(series.Category),
		Instructor:      series.Instructor,
		Location:        series.Location,
		IsActive:        series.IsActive,
		RRule:           rrule,
		CreatedAt:       series.CreatedAt,
	}
	if series.WindowEnd != nil {
		end := series.WindowEnd.In(loc).Format(domain.DateFormat)
		resp.WindowEnd = &end
	}
	return resp
}

func slotOccurrence(s *domain.Slot) *models.OccurrenceResponse {
	return &models.OccurrenceResponse{
		Kind:          string(domain.OccurrenceSlot),
		ID:            s.ID,
		SeriesID:      s.SeriesID,
		Title:         s.Title,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		OriginalStart: s.OriginalStart,
		Capacity:      s.Capacity,
		IsException:   s.IsException,
	}
}

func eventOccurrence(e *domain.Event) *models.OccurrenceResponse {
	return &models.OccurrenceResponse{
		Kind:          string(domain.OccurrenceEvent),
		ID:            e.ID,
		SeriesID:      e.SeriesID,
		Title:         e.Title,
		StartTime:     e.StartTime,
		EndTime:       e.EndTime,
		OriginalStart: e.OriginalStart,
		Capacity:      e.Capacity,
		IsException:   e.IsException,
	}
}

func applyTimeChanges(start, end *time.Time, req *models.UpdateOccurrenceRequest, now time.Time, inPast error) error {
	moved := false
	if req.StartTime != nil {
		*start = *req.StartTime
		moved = true
	}
	if req.EndTime != nil {
		*end = *req.EndTime
		moved = true
	}
	if !end.After(*start) {
		return domain.ErrInvalidTimeRange
	}
	if moved && !start.After(now) {
		return inPast
	}
	return nil
}

func applySlotChanges(slot *domain.Slot, req *models.UpdateOccurrenceRequest, now time.Time) error {
	if err := applyTimeChanges(&slot.StartTime, &slot.EndTime, req, now, domain.ErrSlotInPast); err != nil {
		return err
	}
	if req.Title != nil {
		if len(*req.Title) > domain.MaxTitleLength {
			return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, domain.MaxTitleLength)
		}
		slot.Title = *req.Title
	}
	if req.Category != nil {
		category := domain.SlotCategory(*req.Category)
		if !category.IsValid() {
			return fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *req.Category)
		}
		slot.Category = category
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 || *req.Capacity > domain.MaxSlotCapacity {
			return fmt.Errorf("%w: capacity must be between 1 and %d", ErrInvalidInput, domain.MaxSlotCapacity)
		}
		if *req.Capacity < slot.Occupancy {
			return domain.ErrCapacityBelowOccupancy
		}
		slot.Capacity = *req.Capacity
	}
	if req.Instructor != nil {
		slot.Instructor = req.Instructor
	}
	if req.Location != nil {
		slot.Location = req.Location
	}
	slot.IsException = true
	return nil
}

func applyEventChanges(event *domain.Event, req *models.UpdateOccurrenceRequest, now time.Time) error {
	if err := applyTimeChanges(&event.StartTime, &event.EndTime, req, now, domain.ErrEventInPast); err != nil {
		return err
	}
	if req.Title != nil {
		if *req.Title == "" || len(*req.Title) > domain.MaxTitleLength {
			return fmt.Errorf("%w: title is required and must be at most %d characters", ErrInvalidInput, domain.MaxTitleLength)
		}
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.Capacity != nil {
		if *req.Capacity < 0 || *req.Capacity > domain.MaxEventCapacity {
			return fmt.Errorf("%w: capacity must be between 0 and %d", ErrInvalidInput, domain.MaxEventCapacity)
		}
		event.Capacity = *req.Capacity
	}
	if req.Location != nil {
		event.Location = req.Location
	}
	event.IsException = true
	return nil
}
