package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TADASHII77/Hsb-projectt-sub000/pkg/config"
)

func newTestSender(t *testing.T, handler http.HandlerFunc) *MailSender {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sender, err := NewMailSender(&config.MailConfig{
		APIBaseURL:  server.URL,
		APIKey:      "test-key",
		FromAddress: "noreply@example.com",
		FromName:    "Directory",
	})
	require.NoError(t, err)
	return sender
}

func TestSendDeliversMessage(t *testing.T) {
	var received mailMessage
	var gotAuth string

	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(mailResponse{ID: "msg-42"})
	})

	id, err := sender.Send(context.Background(), "volt@example.com", "New enquiry", "hello")

	require.NoError(t, err)
	assert.Equal(t, "msg-42", id)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "noreply@example.com", received.From.Email)
	require.Len(t, received.To, 1)
	assert.Equal(t, "volt@example.com", received.To[0].Email)
	assert.Equal(t, "New enquiry", received.Subject)
}

func TestSendSurfacesAPIErrors(t *testing.T) {
	sender := newTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rejected"}`, http.StatusUnprocessableEntity)
	})

	_, err := sender.Send(context.Background(), "volt@example.com", "subject", "body")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestNewMailSenderRequiresConfig(t *testing.T) {
	_, err := NewMailSender(&config.MailConfig{})
	assert.Error(t, err)
}
