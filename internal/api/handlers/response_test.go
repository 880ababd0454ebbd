package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RidingSchool-SchedulingService/internal/domain"
	"github.com/m04kA/RidingSchool-SchedulingService/pkg/txmanager"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrSlotNotFound, http.StatusNotFound},
		{domain.ErrSlotFull, http.StatusConflict},
		{domain.ErrTooLateToCancel, http.StatusUnprocessableEntity},
		{domain.ErrAlreadyCancelled, http.StatusConflict},
		{domain.ErrNotBookingOwner, http.StatusForbidden},
		{fmt.Errorf("usecase: %w", domain.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("op: %w", txmanager.ErrSerialization), http.StatusConflict},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusOf(tc.err), tc.err.Error())
	}
}

func TestRespondDomainError_Body(t *testing.T) {
	rec := httptest.NewRecorder()
	status := RespondDomainError(rec, fmt.Errorf("book: %w", domain.ErrSlotFull))

	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "CapacityExceeded", body.Kind)
	assert.Equal(t, "SlotFull", body.Reason)
}

func TestRespondDomainError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondDomainError(rec, fmt.Errorf("pq: password authentication failed"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	var dst struct {
		NewSlotID int64 `json:"newSlotId"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"newSlotId": 4}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, int64(4), dst.NewSlotID)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"slot": 4}`))
	assert.Error(t, DecodeJSON(req, &dst))
}

func TestDecodeOptionalJSON(t *testing.T) {
	var dst struct {
		Reason string `json:"reason"`
	}

	req := httptest.NewRequest(http.MethodPatch, "/", nil)
	require.NoError(t, DecodeOptionalJSON(req, &dst))

	req = httptest.NewRequest(http.MethodPatch, "/", io.NopCloser(strings.NewReader("")))
	req.ContentLength = -1
	require.NoError(t, DecodeOptionalJSON(req, &dst))

	req = httptest.NewRequest(http.MethodPatch, "/", io.NopCloser(strings.NewReader(`{"reason": "sick"}`)))
	req.ContentLength = -1
	require.NoError(t, DecodeOptionalJSON(req, &dst))
	assert.Equal(t, "sick", dst.Reason)

	req = httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"reason": `))
	assert.Error(t, DecodeOptionalJSON(req, &dst))
}
