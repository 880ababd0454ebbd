package export_calendar

import (
	"fmt"
	"net/http"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/middleware"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/integrations/calendar"
)

const (
	msgInvalidID     = "некорректный ID"
	msgMissingUserID = "отсутствует ID пользователя"
	msgNotExportable = "бронирование не содержит данных слота"
	uidDomain        = "riding-school"
	formatICS        = "ics"
	contentTypeICS   = "text/calendar; charset=utf-8"
)

type Handler struct {
	bookings   BookingService
	events     EventService
	recurrence RecurrenceService
	logger     Logger
}

func NewHandler(bookings BookingService, events EventService, recurrence RecurrenceService, logger Logger) *Handler {
	return &Handler{
		bookings:   bookings,
		events:     events,
		recurrence: recurrence,
		logger:     logger,
	}
}

// HandleBooking GET /api/v1/bookings/{bookingId}/calendar
func (h *Handler) HandleBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathID(r, "bookingId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	booking, err := h.bookings.GetByID(r.Context(), bookingID)
	if err != nil {
		h.fail(w, "GET /bookings/{id}/calendar", bookingID, err)
		return
	}
	if booking.MemberID != userID && !middleware.IsStaff(r.Context()) {
		h.logger.Warn("GET /bookings/{id}/calendar - Access denied: booking_id=%d, user_id=%d", bookingID, userID)
		handlers.RespondDomainError(w, domain.ErrNotBookingOwner)
		return
	}
	if booking.Slot == nil {
		handlers.RespondError(w, http.StatusConflict, msgNotExportable)
		return
	}

	entry := calendar.Entry{
		UID:      fmt.Sprintf("booking-%d@%s", booking.ID, uidDomain),
		Title:    booking.Slot.Title,
		Start:    booking.Slot.StartTime,
		End:      booking.Slot.EndTime,
		Stamp:    booking.BookedAt,
		Location: deref(booking.Slot.Location),
	}
	if booking.Slot.Instructor != nil {
		entry.Description = "Instructor: " + *booking.Slot.Instructor
	}
	h.write(w, r, entry)
}

// HandleEvent GET /api/v1/events/{eventId}/calendar
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := handlers.PathID(r, "eventId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	event, err := h.events.GetByID(r.Context(), eventID)
	if err != nil {
		h.fail(w, "GET /events/{id}/calendar", eventID, err)
		return
	}

	h.write(w, r, calendar.Entry{
		UID:         fmt.Sprintf("event-%d@%s", event.ID, uidDomain),
		Title:       event.Title,
		Description: deref(event.Description),
		Location:    deref(event.Location),
		Start:       event.StartTime,
		End:         event.EndTime,
	})
}

// HandleSeries GET /api/v1/series/{seriesId}/calendar
// Экспортирует серию одним повторяющимся событием с RRULE
func (h *Handler) HandleSeries(w http.ResponseWriter, r *http.Request) {
	seriesID, err := handlers.PathID(r, "seriesId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	series, err := h.recurrence.CalendarEntry(r.Context(), seriesID)
	if err != nil {
		h.fail(w, "GET /series/{id}/calendar", seriesID, err)
		return
	}

	h.write(w, r, calendar.Entry{
		UID:         fmt.Sprintf("series-%d@%s", series.ID, uidDomain),
		Title:       series.Title,
		Description: deref(series.Description),
		Location:    deref(series.Location),
		Start:       series.Start,
		End:         series.End,
		RRule:       series.RRule,
	})
}

func (h *Handler) write(w http.ResponseWriter, r *http.Request, entry calendar.Entry) {
	export, err := calendar.Export(entry)
	if err != nil {
		h.logger.Error("Calendar export failed: uid=%s, error=%v", entry.UID, err)
		handlers.RespondInternalError(w)
		return
	}

	if r.URL.Query().Get("format") == formatICS {
		w.Header().Set("Content-Type", contentTypeICS)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", entry.UID+".ics"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(export.ICS))
		return
	}
	handlers.RespondJSON(w, http.StatusOK, export)
}

func (h *Handler) fail(w http.ResponseWriter, route string, id int64, err error) {
	if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
		h.logger.Error("%s - Failed: id=%d, error=%v", route, id, err)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
