package models

import (
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

// RespondRequest ответ участника на приглашение
type RespondRequest struct {
	EventID    int64   `json:"-"`
	MemberID   int64   `json:"-"`
	Status     string  `json:"status"`
	GuestCount int     `json:"guestCount"`
	Notes      *string `json:"notes,omitempty"`
}

// RSVPResponse сохранённый ответ
type RSVPResponse struct {
	ID           int64      `json:"id"`
	EventID      int64      `json:"eventId"`
	MemberID     int64      `json:"memberId"`
	Status       string     `json:"status"`
	GuestCount   int        `json:"guestCount"`
	Notes        *string    `json:"notes,omitempty"`
	WaitlistedAt *time.Time `json:"waitlistedAt,omitempty"`
	CreatedAt    time.Time  `json:"rsvpedAt"`
}

// RespondResponse результат ответа: при нехватке мест ответ попадает в лист ожидания
type RespondResponse struct {
	RSVP       RSVPResponse   `json:"rsvp"`
	Waitlisted bool           `json:"waitlisted"`
	Promoted   []RSVPResponse `json:"promoted,omitempty"`
}

// CancelResponse результат отмены ответа
type CancelResponse struct {
	Promoted []RSVPResponse `json:"promoted"`
}

// AttendeeCountResponse число занятых мест с учётом гостей
type AttendeeCountResponse struct {
	EventID   int64 `json:"eventId"`
	Attending int   `json:"attending"`
	Capacity  int   `json:"capacity"`
}

// RSVPListResponse ответы по событию
type RSVPListResponse struct {
	RSVPs     []RSVPResponse `json:"rsvps"`
	Attending int            `json:"attending"`
	Waitlist  []int64        `json:"waitlist"`
}

// FromDomainRSVP конвертирует domain.RSVP в RSVPResponse
func FromDomainRSVP(r *domain.RSVP) RSVPResponse {
	return RSVPResponse{
		ID:           r.ID,
		EventID:      r.EventID,
		MemberID:     r.MemberID,
		Status:       string(r.Status),
		GuestCount:   r.GuestCount,
		Notes:        r.Notes,
		WaitlistedAt: r.WaitlistedAt,
		CreatedAt:    r.CreatedAt,
	}
}

// FromDomainRSVPs конвертирует список ответов
func FromDomainRSVPs(list []*domain.RSVP) []RSVPResponse {
	result := make([]RSVPResponse, 0, len(list))
	for _, r := range list {
		result = append(result, FromDomainRSVP(r))
	}
	return result
}
