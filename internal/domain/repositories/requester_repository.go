package repositories

import (
	"context"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
)

// RequesterRepository defines the interface for requester data operations
type RequesterRepository interface {
	// Upsert resolves a requester by email, creating a record with the
	// given defaults when none exists. The returned record reflects the
	// stored state, including the current quota.
	Upsert(ctx context.Context, requester *entities.Requester) (*entities.Requester, error)

	// GetByID retrieves a requester by ID
	GetByID(ctx context.Context, id string) (*entities.Requester, error)

	// GetByEmail retrieves a requester by email
	GetByEmail(ctx context.Context, email string) (*entities.Requester, error)
}
