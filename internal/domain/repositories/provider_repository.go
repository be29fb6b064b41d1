package repositories

import (
	"context"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/query"
)

// DiscoveryResult is one page of a discovery query. Items and Total are
// always computed from the same filtered set so pagination cannot drift.
type DiscoveryResult struct {
	Providers []*entities.Provider
	Total     int
}

// ProviderRepository defines the interface for provider data operations
type ProviderRepository interface {
	// Create creates a new provider listing
	Create(ctx context.Context, provider *entities.Provider) error

	// GetByID retrieves a provider by ID
	GetByID(ctx context.Context, id string) (*entities.Provider, error)

	// GetByIDs retrieves multiple providers by their IDs
	GetByIDs(ctx context.Context, ids []string) ([]*entities.Provider, error)

	// Update updates a provider
	Update(ctx context.Context, provider *entities.Provider) error

	// SetVerified marks a provider as verified (or clears the flag)
	SetVerified(ctx context.Context, id string, verified bool) error

	// Delete removes a provider listing
	Delete(ctx context.Context, id string) error

	// Discover executes a compiled filter specification and returns the
	// requested page plus the total match count.
	Discover(ctx context.Context, spec query.Spec) (*DiscoveryResult, error)
}

// ProviderSuggestRepository defines the typeahead suggestion index
// operations (e.g. Typesense).
type ProviderSuggestRepository interface {
	// Suggest returns provider suggestions for a free-text prefix
	Suggest(ctx context.Context, q string, limit int) ([]entities.Suggestion, error)

	// Index upserts a provider into the suggestion index
	Index(ctx context.Context, provider *entities.Provider) error

	// Delete removes a provider from the suggestion index
	Delete(ctx context.Context, id string) error
}
