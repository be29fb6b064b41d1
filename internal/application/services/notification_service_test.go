package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	apperrors "github.com/TADASHII77/Hsb-projectt-sub000/pkg/errors"
)

type recordingSender struct {
	mu       sync.Mutex
	sent     []string
	failures int
}

func (s *recordingSender) Send(ctx context.Context, to, subject, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return "", errors.New("delivery refused")
	}
	s.sent = append(s.sent, to)
	return "msg-123", nil
}

func notificationFixtures() (*entities.Enquiry, *entities.Provider, *entities.Requester) {
	enquiry := &entities.Enquiry{
		ID:          "e1",
		ProviderID:  "p1",
		RequesterID: "r1",
		Services:    []string{"rewiring"},
		Description: "panel upgrade for an older house",
	}
	provider := &entities.Provider{ID: "p1", OwnerName: "Volt Electric", Email: "volt@example.com"}
	requester := &entities.Requester{ID: "r1", Name: "Jordan", Email: "jordan@example.com"}
	return enquiry, provider, requester
}

func TestNotifyProviderDeliversToProviderEmail(t *testing.T) {
	sender := &recordingSender{}
	service := NewNotificationService(nil, sender)
	enquiry, provider, requester := notificationFixtures()

	err := service.NotifyProvider(context.Background(), enquiry, provider, requester)

	require.NoError(t, err)
	assert.Equal(t, []string{"volt@example.com"}, sender.sent)
}

func TestConfirmRequesterRetriesTransientFailures(t *testing.T) {
	sender := &recordingSender{failures: 2}
	service := NewNotificationService(nil, sender)
	enquiry, provider, requester := notificationFixtures()

	err := service.ConfirmRequester(context.Background(), enquiry, provider, requester)

	require.NoError(t, err)
	assert.Equal(t, []string{"jordan@example.com"}, sender.sent)
}

func TestDeliveryFailureIsReturnedAfterRetries(t *testing.T) {
	sender := &recordingSender{failures: 10}
	service := NewNotificationService(nil, sender)
	enquiry, provider, requester := notificationFixtures()

	err := service.NotifyProvider(context.Background(), enquiry, provider, requester)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	assert.Empty(t, sender.sent)
}
