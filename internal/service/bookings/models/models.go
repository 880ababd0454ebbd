package models

import (
	"time"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
)

// Request модели

// MarkAttendanceRequest запрос на отметку посещения
type MarkAttendanceRequest struct {
	ActorID      int64   `json:"-"`
	ActorIsStaff bool    `json:"-"`
	State        string  `json:"attendanceState"`
	Notes        *string `json:"notes,omitempty"`
}

// Response модели

// SlotInfo краткие данные слота в составе бронирования
type SlotInfo struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`
	Instructor *string   `json:"instructor,omitempty"`
	Location   *string   `json:"location,omitempty"`
}

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID                 int64      `json:"id"`
	SlotID             int64      `json:"slotId"`
	MemberID           int64      `json:"memberId"`
	BookedBy           int64      `json:"bookedBy"`
	State              string     `json:"state"`
	AttendanceState    string     `json:"attendanceState"`
	AttendanceNotes    *string    `json:"attendanceNotes,omitempty"`
	BookedAt           time.Time  `json:"bookedAt"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	RescheduleCount    int        `json:"rescheduleCount"`
	Slot               *SlotInfo  `json:"slot,omitempty"`
}

// UpcomingListResponse список предстоящих занятий участника
type UpcomingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

// FromDomainBooking конвертирует domain.Booking в BookingResponse
func FromDomainBooking(b *domain.Booking, slot *domain.Slot) *BookingResponse {
	resp := &BookingResponse{
		ID:                 b.ID,
		SlotID:             b.SlotID,
		MemberID:           b.MemberID,
		BookedBy:           b.BookedBy,
		State:              string(b.State),
		AttendanceState:    string(b.AttendanceState),
		AttendanceNotes:    b.AttendanceNotes,
		BookedAt:           b.BookedAt,
		CancelledAt:        b.CancelledAt,
		CancellationReason: b.CancellationReason,
		RescheduleCount:    b.RescheduleCount,
	}
	if slot != nil {
		resp.Slot = &SlotInfo{
			ID:         slot.ID,
			Title:      slot.Title,
			Category:   string(slot.Category),
			StartTime:  slot.StartTime,
			EndTime:    slot.EndTime,
			Instructor: slot.Instructor,
			Location:   slot.Location,
		}
	}
	return resp
}

// FromDomainUpcoming конвертирует список бронирований со слотами
func FromDomainUpcoming(items []*domain.BookingWithSlot) *UpcomingListResponse {
	resp := &UpcomingListResponse{
		Bookings: make([]BookingResponse, 0, len(items)),
		Total:    len(items),
	}
	for _, item := range items {
		resp.Bookings = append(resp.Bookings, *FromDomainBooking(&item.Booking, &item.Slot))
	}
	return resp
}
