package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/RidingSchool-SchedulingService/pkg/logger"
)

func TestClient_Send(t *testing.T) {
	var got Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/internal/notifications", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", time.Second, logger.NewNop())
	err := client.Send(context.Background(), Message{
		RecipientID: 42,
		Template:    TemplateRSVPPromoted,
		Data:        map[string]string{"event": "Spring show"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.RecipientID)
	assert.Equal(t, "Spring show", got.Data["event"])
}

func TestClient_SendErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Code: 400, Message: "unknown template"})
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second, logger.NewNop())
	err := client.Send(context.Background(), Message{RecipientID: 1, Template: "nope"})
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "unknown template")

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	err = NewClient(failing.URL, time.Second, logger.NewNop()).Send(context.Background(), Message{RecipientID: 1})
	assert.ErrorIs(t, err, ErrInvalidResponse)

	unreachable := NewClient("http://127.0.0.1:1", 200*time.Millisecond, logger.NewNop())
	err = unreachable.Send(context.Background(), Message{RecipientID: 1})
	assert.ErrorIs(t, err, ErrUnavailable)
}
