package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/TADASHII77/Hsb-projectt-sub000/pkg/config"
)

// MailSender delivers messages through a transactional mail HTTP API.
type MailSender struct {
	apiBaseURL  string
	apiKey      string
	fromAddress string
	fromName    string
	httpClient  *http.Client
}

// NewMailSender creates a new mail sender
func NewMailSender(cfg *config.MailConfig) (*MailSender, error) {
	if cfg.APIBaseURL == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("MAIL_API_BASE_URL and MAIL_API_KEY must be set")
	}

	return &MailSender{
		apiBaseURL:  cfg.APIBaseURL,
		apiKey:      cfg.APIKey,
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type mailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailMessage struct {
	From    mailAddress   `json:"from"`
	To      []mailAddress `json:"to"`
	Subject string        `json:"subject"`
	Text    string        `json:"text"`
}

type mailResponse struct {
	ID string `json:"id"`
}

// Send delivers one message and returns the mail API's message ID.
func (s *MailSender) Send(ctx context.Context, to, subject, body string) (string, error) {
	message := mailMessage{
		From:    mailAddress{Email: s.fromAddress, Name: s.fromName},
		To:      []mailAddress{{Email: to}},
		Subject: subject,
		Text:    body,
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return "", fmt.Errorf("failed to marshal mail message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiBaseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send mail: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read mail response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("mail API returned %d: %s", resp.StatusCode, string(responseBody))
	}

	var parsed mailResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse mail response: %w", err)
	}

	return parsed.ID, nil
}
