package entities

import (
	"time"
)

// ProviderEventType identifies what happened to a provider or enquiry.
type ProviderEventType string

const (
	EventProviderCreated ProviderEventType = "provider.created"
	EventProviderUpdated ProviderEventType = "provider.updated"
	EventProviderDeleted ProviderEventType = "provider.deleted"
	EventEnquiryCreated  ProviderEventType = "enquiry.created"
)

// ProviderEvent is published on the event bus after a write so caches and
// indexes can react without coupling to the write path.
type ProviderEvent struct {
	ID         string            `json:"id"`
	ProviderID string            `json:"provider_id"`
	EnquiryID  string            `json:"enquiry_id,omitempty"`
	EventType  ProviderEventType `json:"event_type"`
	Timestamp  time.Time         `json:"timestamp"`
}
