package models

import (
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

// CreateSlotRequest запрос на создание разового слота
type CreateSlotRequest struct {
	ActorID    int64     `json:"-"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Category   string    `json:"category"`
	Capacity   int       `json:"capacity"`
	Instructor *string   `json:"instructor,omitempty"`
	Location   *string   `json:"location,omitempty"`
}

// ListSlotsRequest фильтр списка слотов
type ListSlotsRequest struct {
	From          *time.Time
	To            *time.Time
	Category      *string
	AvailableOnly bool
}

// SlotResponse слот с оставшейся ёмкостью
type SlotResponse struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	Category      string    `json:"category"`
	Capacity      int       `json:"capacity"`
	Occupancy     int       `json:"occupancy"`
	Remaining     int       `json:"remaining"`
	Instructor    *string   `json:"instructor,omitempty"`
	Location      *string   `json:"location,omitempty"`
	SeriesID      *int64    `json:"seriesId,omitempty"`
	OriginalStart time.Time `json:"originalStart"`
	IsException   bool      `json:"isException"`
}

// SlotListResponse список слотов
type SlotListResponse struct {
	Slots []SlotResponse `json:"slots"`
	Total int            `json:"total"`
}

// FromDomainSlot конвертирует domain.Slot в SlotResponse
func FromDomainSlot(s *domain.Slot) *SlotResponse {
	return &SlotResponse{
		ID:            s.ID,
		Title:         s.Title,
		StartTime:     s.StartTime,
		EndTime:       s.EndTime,
		Category:      string(s.Category),
		Capacity:      s.Capacity,
		Occupancy:     s.Occupancy,
		Remaining:     s.Remaining(),
		Instructor:    s.Instructor,
		Location:      s.Location,
		SeriesID:      s.SeriesID,
		OriginalStart: s.OriginalStart,
		IsException:   s.IsException,
	}
}
