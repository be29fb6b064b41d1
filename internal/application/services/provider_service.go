package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/providers"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/repositories"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/query"
	apperrors "github.com/TADASHII77/Hsb-projectt-sub000/pkg/errors"
)

// ProviderService handles business logic for provider listings
type ProviderService struct {
	repo        repositories.ProviderRepository
	suggestRepo repositories.ProviderSuggestRepository
	eventBus    providers.EventBus
}

// NewProviderService creates a new provider service. The suggestion index
// and event bus are optional.
func NewProviderService(
	repo repositories.ProviderRepository,
	suggestRepo repositories.ProviderSuggestRepository,
	eventBus providers.EventBus,
) *ProviderService {
	return &ProviderService{
		repo:        repo,
		suggestRepo: suggestRepo,
		eventBus:    eventBus,
	}
}

// Discover compiles the filter input and executes it against the store
func (s *ProviderService) Discover(ctx context.Context, in query.Input) (*repositories.DiscoveryResult, error) {
	spec, err := query.Compile(in)
	if err != nil {
		return nil, err
	}
	return s.repo.Discover(ctx, spec)
}

// Suggest returns typeahead suggestions for a free-text prefix
func (s *ProviderService) Suggest(ctx context.Context, q string, limit int) ([]entities.Suggestion, error) {
	if s.suggestRepo == nil {
		return []entities.Suggestion{}, nil
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return []entities.Suggestion{}, nil
	}
	if limit <= 0 || limit > 20 {
		limit = 10
	}
	return s.suggestRepo.Suggest(ctx, q, limit)
}

// GetByID retrieves a provider by ID
func (s *ProviderService) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a new provider listing, indexes it and publishes the
// creation event. Index and event failures are logged, never surfaced.
func (s *ProviderService) Create(ctx context.Context, provider *entities.Provider) error {
	if err := validateProvider(provider); err != nil {
		return err
	}

	if provider.ID == "" {
		provider.ID = uuid.New().String()
	}
	if provider.Status == "" {
		provider.Status = entities.StatusPending
	}
	now := time.Now()
	provider.CreatedAt = now
	provider.UpdatedAt = now

	if err := s.repo.Create(ctx, provider); err != nil {
		return err
	}

	s.indexAndPublish(ctx, provider, entities.EventProviderCreated)
	return nil
}

// Update updates a provider listing and refreshes the suggestion index
func (s *ProviderService) Update(ctx context.Context, provider *entities.Provider) error {
	if err := validateProvider(provider); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, provider); err != nil {
		return err
	}

	s.indexAndPublish(ctx, provider, entities.EventProviderUpdated)
	return nil
}

// SetVerified marks a listing as verified by the marketplace operator
func (s *ProviderService) SetVerified(ctx context.Context, id string, verified bool) error {
	if err := s.repo.SetVerified(ctx, id, verified); err != nil {
		return err
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("provider_id", id).Msg("failed to reload provider after verification")
		return nil
	}

	s.indexAndPublish(ctx, updated, entities.EventProviderUpdated)
	return nil
}

// Delete removes a provider listing and its index entry
func (s *ProviderService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.suggestRepo != nil {
		if err := s.suggestRepo.Delete(ctx, id); err != nil {
			log.Warn().Err(err).Str("provider_id", id).Msg("failed to remove provider from suggestion index")
		}
	}

	s.publish(ctx, id, entities.EventProviderDeleted)
	return nil
}

func (s *ProviderService) indexAndPublish(ctx context.Context, provider *entities.Provider, eventType entities.ProviderEventType) {
	if s.suggestRepo != nil {
		if err := s.suggestRepo.Index(ctx, provider); err != nil {
			// Eventual consistency: the indexer catches up later.
			log.Warn().Err(err).Str("provider_id", provider.ID).Msg("failed to index provider")
		}
	}
	s.publish(ctx, provider.ID, eventType)
}

func (s *ProviderService) publish(ctx context.Context, providerID string, eventType entities.ProviderEventType) {
	if s.eventBus == nil {
		return
	}
	event := &entities.ProviderEvent{
		ID:         uuid.New().String(),
		ProviderID: providerID,
		EventType:  eventType,
		Timestamp:  time.Now(),
	}
	if err := s.eventBus.Publish(ctx, providers.EventChannelProviderUpdates, event); err != nil {
		log.Warn().Err(err).Str("provider_id", providerID).Msg("failed to publish provider event")
	}
}

func validateProvider(provider *entities.Provider) error {
	if strings.TrimSpace(provider.OwnerName) == "" {
		return apperrors.NewValidationError("provider name is required")
	}
	if !emailPattern.MatchString(strings.TrimSpace(provider.Email)) {
		return apperrors.NewValidationError("a valid provider email is required")
	}
	if strings.TrimSpace(provider.Category) == "" {
		return apperrors.NewValidationError("provider category is required")
	}
	if provider.Rating < 0 || provider.Rating > 5 {
		return apperrors.NewValidationError("rating must be between 0 and 5")
	}
	return nil
}
