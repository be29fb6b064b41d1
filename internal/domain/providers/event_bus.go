package providers

import (
	"context"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ProviderEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ProviderEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// Event channels.
const (
	// EventChannelProviderUpdates carries all provider listing changes.
	EventChannelProviderUpdates = "provider:updates"

	// EventChannelEnquiries carries enquiry creation events.
	EventChannelEnquiries = "enquiry:created"
)
