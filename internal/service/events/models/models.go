package models

import (
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

// CreateEventRequest запрос на создание разового события
type CreateEventRequest struct {
	ActorID     int64     `json:"-"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Capacity    int       `json:"capacity"` // 0 - без ограничения
}

// EventResponse событие с текущим числом участников
type EventResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Location    *string   `json:"location,omitempty"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Capacity    int       `json:"capacity"`
	Attending   int       `json:"attending"`
	Waitlisted  int       `json:"waitlisted"`
	SeriesID    *int64    `json:"seriesId,omitempty"`
	IsException bool      `json:"isException"`
}

// EventListResponse список событий
type EventListResponse struct {
	Events []EventResponse `json:"events"`
	Total  int             `json:"total"`
}

// FromDomainEvent конвертирует domain.Event в EventResponse
func FromDomainEvent(e *domain.Event, rsvps []*domain.RSVP) *EventResponse {
	return &EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		Location:    e.Location,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Capacity:    e.Capacity,
		Attending:   domain.AttendingUnits(rsvps, 0),
		Waitlisted:  len(domain.WaitlistQueue(rsvps)),
		SeriesID:    e.SeriesID,
		IsException: e.IsException,
	}
}
