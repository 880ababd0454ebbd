package list_slots

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/slots/models"
)

// ToServiceRequest разбирает query параметры from, to (RFC3339), category и available
func ToServiceRequest(q url.Values) (*models.ListSlotsRequest, error) {
	req := &models.ListSlotsRequest{}

	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("from: %w", err)
		}
		req.From = &from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("to: %w", err)
		}
		req.To = &to
	}
	if raw := q.Get("category"); raw != "" {
		req.Category = &raw
	}
	if raw := q.Get("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("available: %w", err)
		}
		req.AvailableOnly = available
	}
	return req, nil
}
