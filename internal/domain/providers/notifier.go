package providers

import (
	"context"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
)

// NotificationProvider is the external messaging collaborator. Delivery is
// best-effort with respect to the enquiry workflow: a failed dispatch is
// logged, never surfaced as an enquiry failure.
type NotificationProvider interface {
	// NotifyProvider alerts the provider about a new enquiry
	NotifyProvider(ctx context.Context, enquiry *entities.Enquiry, provider *entities.Provider, requester *entities.Requester) error

	// ConfirmRequester confirms receipt of the enquiry to the requester
	ConfirmRequester(ctx context.Context, enquiry *entities.Enquiry, provider *entities.Provider, requester *entities.Requester) error
}
