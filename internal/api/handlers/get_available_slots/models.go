package get_available_slots

import (
	"time"

	getAvailableSlots "github.com/m04kA/RidingSchool-SchedulingService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Date     string         `json:"date"`
	MemberID int64          `json:"memberId"`
	Slots    []SlotResponse `json:"slots"`
}

// SlotResponse HTTP response model
type SlotResponse struct {
	ID              int64   `json:"id"`
	Title           string  `json:"title"`
	Category        string  `json:"category"`
	StartTime       string  `json:"startTime"`
	LocalTime       string  `json:"localTime"` // "10:00" в часовом поясе школы
	DurationMinutes int     `json:"durationMinutes"`
	AvailableSpots  int     `json:"availableSpots"`
	TotalSpots      int     `json:"totalSpots"`
	Instructor      *string `json:"instructor,omitempty"`
	Location        *string `json:"location,omitempty"`
}

// ToUseCaseRequest формирует запрос use case из параметров пути и query
func ToUseCaseRequest(memberID int64, date, category string) *getAvailableSlots.Request {
	req := &getAvailableSlots.Request{MemberID: memberID, Date: date}
	if category != "" {
		req.Category = &category
	}
	return req
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			ID:              s.ID,
			Title:           s.Title,
			Category:        s.Category,
			StartTime:       s.StartTime.Format(time.RFC3339),
			LocalTime:       s.LocalTime.String(),
			DurationMinutes: s.DurationMinutes,
			AvailableSpots:  s.AvailableSpots,
			TotalSpots:      s.TotalSpots,
			Instructor:      s.Instructor,
			Location:        s.Location,
		})
	}
	return &AvailableSlotsResponse{
		Date:     resp.Date,
		MemberID: resp.MemberID,
		Slots:    slots,
	}
}
