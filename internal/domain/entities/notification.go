package entities

import (
	"time"
)

// NotificationKind distinguishes the two messages sent per enquiry.
type NotificationKind string

const (
	// NotificationProviderNotify alerts the provider about a new enquiry.
	NotificationProviderNotify NotificationKind = "provider_notify"
	// NotificationRequesterConfirm confirms receipt to the requester.
	NotificationRequesterConfirm NotificationKind = "requester_confirm"
)

// NotificationStatus is the delivery state of a notification record.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// EnquiryNotification is the persisted delivery record for one outbound
// message. Delivery is best-effort; a failed record never rolls back the
// enquiry it belongs to.
type EnquiryNotification struct {
	ID           string             `json:"id" db:"id"`
	EnquiryID    string             `json:"enquiry_id" db:"enquiry_id"`
	Kind         NotificationKind   `json:"kind" db:"kind"`
	Recipient    string             `json:"recipient" db:"recipient"`
	Status       NotificationStatus `json:"status" db:"status"`
	MessageID    *string            `json:"message_id,omitempty" db:"message_id"`
	SentAt       *time.Time         `json:"sent_at,omitempty" db:"sent_at"`
	FailedAt     *time.Time         `json:"failed_at,omitempty" db:"failed_at"`
	ErrorMessage *string            `json:"error_message,omitempty" db:"error_message"`
	RetryCount   int                `json:"retry_count" db:"retry_count"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" db:"updated_at"`
}
