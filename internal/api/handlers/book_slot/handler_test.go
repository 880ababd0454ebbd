package book_slot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/api/middleware"
	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	bookSlot "github.com/m04kA/RidingSchool-SchedulingService/internal/usecase/book_slot"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/logger"
)

type stubUseCase struct {
	got *bookSlot.Request
	err error
}

func (s *stubUseCase) Execute(ctx context.Context, req *bookSlot.Request) (*bookSlot.Response, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	start := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	return &bookSlot.Response{
		ID: 1, SlotID: req.SlotID, MemberID: req.MemberID, BookedBy: req.ActorID,
		State: "confirmed", SlotStart: start, SlotEnd: start.Add(time.Hour), Remaining: 3,
	}, nil
}

func serve(h *Handler, body string, userID int64, staff bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/slots/5/bookings", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"slotId": "5"})
	req = req.WithContext(middleware.WithIdentity(req.Context(), userID, staff))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_MemberBooksForSelf(t *testing.T) {
	uc := &stubUseCase{}
	rec := serve(NewHandler(uc, logger.NewNop()), "", 42, false)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(42), uc.got.MemberID)
	assert.Equal(t, int64(5), uc.got.SlotID)

	var resp BookingResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Remaining)
	assert.Equal(t, "2025-06-02T10:00:00Z", resp.SlotStart)
}

func TestHandle_OnlyStaffBooksForOthers(t *testing.T) {
	uc := &stubUseCase{}
	h := NewHandler(uc, logger.NewNop())

	rec := serve(h, `{"memberId": 7}`, 42, false)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, uc.got)

	rec = serve(h, `{"memberId": 7}`, 900, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(7), uc.got.MemberID)
	assert.Equal(t, int64(900), uc.got.ActorID)
}

func TestHandle_ChunkedBody(t *testing.T) {
	uc := &stubUseCase{}
	h := NewHandler(uc, logger.NewNop())

	chunked := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/slots/5/bookings", io.NopCloser(strings.NewReader(body)))
		req.ContentLength = -1
		req = mux.SetURLVars(req, map[string]string{"slotId": "5"})
		req = req.WithContext(middleware.WithIdentity(req.Context(), 900, true))
		rec := httptest.NewRecorder()
		h.Handle(rec, req)
		return rec
	}

	rec := chunked(`{"memberId": 7}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(7), uc.got.MemberID)

	rec = chunked("")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(900), uc.got.MemberID)

	rec = chunked(`{"memberId":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_MapsEngineErrors(t *testing.T) {
	cases := map[error]int{
		domain.ErrSlotFull:                         http.StatusConflict,
		domain.ErrSlotInPast:                       http.StatusUnprocessableEntity,
		domain.ErrSlotNotFound:                     http.StatusNotFound,
		domain.ErrMemberScheduleConflict:           http.StatusConflict,
		fmt.Errorf("book_slot: internal error: x"): http.StatusInternalServerError,
	}
	for err, want := range cases {
		rec := serve(NewHandler(&stubUseCase{err: err}, logger.NewNop()), "", 42, false)
		assert.Equal(t, want, rec.Code, err.Error())
	}
}

func TestHandle_InvalidSlotID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/slots/x/bookings", nil)
	req = mux.SetURLVars(req, map[string]string{"slotId": "x"})
	req = req.WithContext(middleware.WithIdentity(req.Context(), 1, false))
	rec := httptest.NewRecorder()

	NewHandler(&stubUseCase{}, logger.NewNop()).Handle(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
