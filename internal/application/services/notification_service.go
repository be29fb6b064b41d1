package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/providers"
	apperrors "github.com/TADASHII77/Hsb-projectt-sub000/pkg/errors"
	"github.com/TADASHII77/Hsb-projectt-sub000/pkg/retry"
)

// MessageSender delivers one rendered message to a recipient address and
// returns the delivery service's message ID.
type MessageSender interface {
	Send(ctx context.Context, to, subject, body string) (string, error)
}

// NotificationService sends the two messages an enquiry produces and keeps
// a delivery record for each. It satisfies the NotificationProvider
// contract: failures are recorded and returned but callers treat them as
// best-effort.
type NotificationService struct {
	db     *sqlx.DB
	sender MessageSender
}

var _ providers.NotificationProvider = (*NotificationService)(nil)

// NewNotificationService creates a new notification service. A nil db
// disables record keeping; delivery still happens.
func NewNotificationService(db *sqlx.DB, sender MessageSender) *NotificationService {
	return &NotificationService{
		db:     db,
		sender: sender,
	}
}

// NotifyProvider alerts the provider about a new enquiry
func (n *NotificationService) NotifyProvider(ctx context.Context, enquiry *entities.Enquiry, provider *entities.Provider, requester *entities.Requester) error {
	subject := fmt.Sprintf("New enquiry from %s", requester.Name)
	body := renderProviderNotify(enquiry, requester)
	return n.deliver(ctx, enquiry.ID, entities.NotificationProviderNotify, provider.Email, subject, body)
}

// ConfirmRequester confirms receipt of the enquiry to the requester
func (n *NotificationService) ConfirmRequester(ctx context.Context, enquiry *entities.Enquiry, provider *entities.Provider, requester *entities.Requester) error {
	subject := fmt.Sprintf("Your enquiry to %s was sent", provider.OwnerName)
	body := renderRequesterConfirm(enquiry, provider, requester)
	return n.deliver(ctx, enquiry.ID, entities.NotificationRequesterConfirm, requester.Email, subject, body)
}

func (n *NotificationService) deliver(ctx context.Context, enquiryID string, kind entities.NotificationKind, recipient, subject, body string) error {
	now := time.Now()
	record := &entities.EnquiryNotification{
		ID:        uuid.New().String(),
		EnquiryID: enquiryID,
		Kind:      kind,
		Recipient: recipient,
		Status:    entities.NotificationStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := n.createRecord(ctx, record); err != nil {
		log.Warn().Err(err).Str("enquiry_id", enquiryID).Msg("failed to create notification record")
	}

	var messageID string
	attempts := 0
	sendErr := retry.Do(ctx, retry.QuickConfig(), func() error {
		attempts++
		var err error
		messageID, err = n.sender.Send(ctx, recipient, subject, body)
		return err
	})

	record.RetryCount = attempts - 1
	record.UpdatedAt = time.Now()
	if sendErr != nil {
		failedAt := time.Now()
		errMsg := sendErr.Error()
		record.Status = entities.NotificationStatusFailed
		record.FailedAt = &failedAt
		record.ErrorMessage = &errMsg
	} else {
		sentAt := time.Now()
		record.Status = entities.NotificationStatusSent
		record.MessageID = &messageID
		record.SentAt = &sentAt
	}

	if err := n.updateRecord(ctx, record); err != nil {
		log.Warn().Err(err).Str("enquiry_id", enquiryID).Msg("failed to update notification record")
	}

	if sendErr != nil {
		return apperrors.NewExternalError("notification delivery failed", sendErr)
	}
	return nil
}

func renderProviderNotify(enquiry *entities.Enquiry, requester *entities.Requester) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You have a new enquiry from %s (%s).\n\n", requester.Name, requester.Email)
	if len(enquiry.Services) > 0 {
		fmt.Fprintf(&b, "Services: %s\n", strings.Join(enquiry.Services, ", "))
	}
	if enquiry.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", enquiry.Location)
	}
	if enquiry.Budget != "" {
		fmt.Fprintf(&b, "Budget: %s\n", enquiry.Budget)
	}
	if enquiry.PreferredDate != nil {
		fmt.Fprintf(&b, "Preferred date: %s\n", enquiry.PreferredDate.Format("Monday, January 2, 2006"))
	}
	if enquiry.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", enquiry.Description)
	}
	return b.String()
}

func renderRequesterConfirm(enquiry *entities.Enquiry, provider *entities.Provider, requester *entities.Requester) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", requester.Name)
	fmt.Fprintf(&b, "Your enquiry was sent to %s. They will contact you at %s.\n\n", provider.OwnerName, requester.Email)
	if enquiry.Description != "" {
		fmt.Fprintf(&b, "Your request: %s\n", enquiry.Description)
	}
	return b.String()
}

func (n *NotificationService) createRecord(ctx context.Context, record *entities.EnquiryNotification) error {
	if n.db == nil {
		return nil
	}
	query := `
		INSERT INTO enquiry_notifications
		(id, enquiry_id, kind, recipient, status, message_id, sent_at, failed_at, error_message, retry_count, created_at, updated_at)
		VALUES (:id, :enquiry_id, :kind, :recipient, :status, :message_id, :sent_at, :failed_at, :error_message, :retry_count, :created_at, :updated_at)
	`
	_, err := n.db.NamedExecContext(ctx, query, record)
	return err
}

func (n *NotificationService) updateRecord(ctx context.Context, record *entities.EnquiryNotification) error {
	if n.db == nil {
		return nil
	}
	query := `
		UPDATE enquiry_notifications
		SET status = :status, message_id = :message_id, sent_at = :sent_at, failed_at = :failed_at,
		    error_message = :error_message, retry_count = :retry_count, updated_at = :updated_at
		WHERE id = :id
	`
	_, err := n.db.NamedExecContext(ctx, query, record)
	return err
}
