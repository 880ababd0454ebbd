package respond_rsvp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/handlers"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/middleware"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/service/rsvp/models"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/logger"
)

type stubService struct {
	got        *models.RespondRequest
	waitlisted bool
	err        error
}

func (s *stubService) Respond(ctx context.Context, req *models.RespondRequest) (*models.RespondResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	status := req.Status
	if s.waitlisted {
		status = "waitlist"
	}
	return &models.RespondResponse{
		RSVP:       models.RSVPResponse{ID: 1, EventID: req.EventID, MemberID: req.MemberID, Status: status, GuestCount: req.GuestCount},
		Waitlisted: s.waitlisted,
	}, nil
}

func serve(h *Handler, eventID, body string, userID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, "/api/v1/events/"+eventID+"/rsvp", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"eventId": eventID})
	if userID != 0 {
		req = req.WithContext(middleware.WithIdentity(req.Context(), userID, false))
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_StoresAnswerForCaller(t *testing.T) {
	svc := &stubService{}
	rec := serve(NewHandler(svc, logger.NewNop()), "9", `{"status":"attending","guestCount":2}`, 42)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, int64(9), svc.got.EventID)
	assert.Equal(t, int64(42), svc.got.MemberID)
	assert.Equal(t, 2, svc.got.GuestCount)

	var resp models.RespondResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.False(t, resp.Waitlisted)
	assert.Equal(t, "attending", resp.RSVP.Status)
}

func TestHandle_WaitlistedIsNotAnError(t *testing.T) {
	svc := &stubService{waitlisted: true}
	rec := serve(NewHandler(svc, logger.NewNop()), "9", `{"status":"attending"}`, 42)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.RespondResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Waitlisted)
	assert.Equal(t, "waitlist", resp.RSVP.Status)
}

func TestHandle_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		event  string
		body   string
		user   int64
		err    error
		status int
		reason string
	}{
		{name: "bad event id", event: "abc", body: `{"status":"attending"}`, user: 42, status: http.StatusBadRequest},
		{name: "no identity", event: "9", body: `{"status":"attending"}`, status: http.StatusUnauthorized},
		{name: "unknown field", event: "9", body: `{"status":"attending","memberId":7}`, user: 42, status: http.StatusBadRequest},
		{name: "event not found", event: "9", body: `{"status":"attending"}`, user: 42, err: domain.ErrEventNotFound, status: http.StatusNotFound, reason: "EventNotFound"},
		{name: "event started", event: "9", body: `{"status":"attending"}`, user: 42, err: domain.ErrEventInPast, status: http.StatusUnprocessableEntity, reason: "EventInPast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(NewHandler(&stubService{err: tt.err}, logger.NewNop()), tt.event, tt.body, tt.user)
			require.Equal(t, tt.status, rec.Code)

			if tt.reason != "" {
				var body handlers.ErrorResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
				assert.Equal(t, tt.reason, body.Reason)
			}
		})
	}
}
