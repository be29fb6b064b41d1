package repositories

import (
	"context"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
)

// EnquiryFilter defines filters for listing enquiries on the
// administrative surface.
type EnquiryFilter struct {
	ProviderID  string
	RequesterID string
	Status      entities.EnquiryStatus
	Limit       int
	Offset      int
}

// EnquiryRepository defines the interface for enquiry data operations
type EnquiryRepository interface {
	// Create inserts the enquiry and decrements the requester's quota as
	// a single atomic unit. It returns the requester's remaining quota.
	//
	// Errors: QUOTA_EXHAUSTED when the requester has no allowance left,
	// CONFLICT when an enquiry for the same provider and requester
	// already exists, UNAVAILABLE on transient store failure (nothing is
	// committed, so the call is safe to retry).
	Create(ctx context.Context, enquiry *entities.Enquiry) (remainingQuota int, err error)

	// GetByID retrieves an enquiry by ID
	GetByID(ctx context.Context, id string) (*entities.Enquiry, error)

	// List retrieves enquiries with filters plus the total match count
	List(ctx context.Context, filter EnquiryFilter) ([]*entities.Enquiry, int, error)

	// UpdateStatus applies a workflow status transition
	UpdateStatus(ctx context.Context, id string, status entities.EnquiryStatus) error
}
