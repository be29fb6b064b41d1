package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/providers"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/repositories"
	apperrors "github.com/TADASHII77/Hsb-projectt-sub000/pkg/errors"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// QuoteRequest carries everything needed to open an enquiry with one
// provider. The requester is identified by email; a requester record is
// created on first contact.
type QuoteRequest struct {
	ProviderID string

	RequesterEmail string
	RequesterName  string
	RequesterPhone string

	Services      []string
	Category      string
	Location      string
	Budget        string
	Description   string
	PreferredDate *time.Time
}

// QuoteResult is the outcome of a successful enquiry.
type QuoteResult struct {
	Enquiry        *entities.Enquiry  `json:"enquiry"`
	Provider       *entities.Provider `json:"provider"`
	RemainingQuota int                `json:"remaining_quota"`
}

// BatchItem is the per-provider outcome of a batch request.
type BatchItem struct {
	ProviderID string       `json:"provider_id"`
	Result     *QuoteResult `json:"result,omitempty"`
	Err        error        `json:"-"`
}

// BatchResult reports a batch request's partial outcome. Items preserve
// the caller's provider order.
type BatchResult struct {
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// EnquiryService orchestrates quote requests: requester resolution, quota
// accounting, persistence, notification dispatch and event publication.
type EnquiryService struct {
	providerRepo  repositories.ProviderRepository
	requesterRepo repositories.RequesterRepository
	enquiryRepo   repositories.EnquiryRepository
	notifier      providers.NotificationProvider
	eventBus      providers.EventBus

	defaultQuota int
	batchLimit   int
}

// NewEnquiryService creates a new enquiry service. The notifier and event
// bus are optional; a nil collaborator is skipped.
func NewEnquiryService(
	providerRepo repositories.ProviderRepository,
	requesterRepo repositories.RequesterRepository,
	enquiryRepo repositories.EnquiryRepository,
	notifier providers.NotificationProvider,
	eventBus providers.EventBus,
	defaultQuota int,
	batchLimit int,
) *EnquiryService {
	return &EnquiryService{
		providerRepo:  providerRepo,
		requesterRepo: requesterRepo,
		enquiryRepo:   enquiryRepo,
		notifier:      notifier,
		eventBus:      eventBus,
		defaultQuota:  defaultQuota,
		batchLimit:    batchLimit,
	}
}

// Request opens one enquiry. The insert and the quota decrement commit
// atomically in the repository; everything after persistence is
// best-effort and never fails the enquiry.
func (s *EnquiryService) Request(ctx context.Context, req QuoteRequest) (*QuoteResult, error) {
	if err := validateQuoteRequest(req); err != nil {
		return nil, err
	}

	provider, err := s.providerRepo.GetByID(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	if provider.Status != entities.StatusApproved {
		// Unapproved listings are not discoverable, so they look absent.
		return nil, apperrors.NewNotFoundError("provider with id " + req.ProviderID + " not found")
	}

	requester, err := s.requesterRepo.Upsert(ctx, &entities.Requester{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(req.RequesterEmail)),
		Name:         strings.TrimSpace(req.RequesterName),
		Phone:        strings.TrimSpace(req.RequesterPhone),
		EnquiryCount: s.defaultQuota,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	enquiry := &entities.Enquiry{
		ID:            uuid.New().String(),
		ProviderID:    provider.ID,
		RequesterID:   requester.ID,
		Services:      req.Services,
		Category:      req.Category,
		Location:      req.Location,
		Budget:        req.Budget,
		Description:   req.Description,
		Status:        entities.EnquiryPending,
		PreferredDate: req.PreferredDate,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	remaining, err := s.enquiryRepo.Create(ctx, enquiry)
	if err != nil {
		return nil, err
	}

	s.dispatchAfterCreate(enquiry, provider, requester)

	return &QuoteResult{
		Enquiry:        enquiry,
		Provider:       provider,
		RemainingQuota: remaining,
	}, nil
}

// RequestBatch opens one enquiry per provider, concurrently. Each item
// succeeds or fails on its own; a quota or duplicate failure on one
// provider never rolls back the others.
func (s *EnquiryService) RequestBatch(ctx context.Context, providerIDs []string, req QuoteRequest) (*BatchResult, error) {
	ids := dedupe(providerIDs)
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("at least one provider id is required")
	}
	if len(ids) > s.batchLimit {
		return nil, apperrors.NewValidationError("batch size exceeds the limit")
	}

	items := make([]BatchItem, len(ids))
	g, gctx := errgroup.WithContext(ctx)

	for i, id := range ids {
		g.Go(func() error {
			itemReq := req
			itemReq.ProviderID = id

			result, err := s.Request(gctx, itemReq)
			items[i] = BatchItem{ProviderID: id, Result: result, Err: err}
			// Item failures are part of the batch outcome, not group
			// errors, so other items keep running.
			return nil
		})
	}

	// The closures never return an error; Wait only orders the writes.
	_ = g.Wait()

	batch := &BatchResult{Items: items}
	for _, item := range items {
		if item.Err != nil {
			batch.Failed++
		} else {
			batch.Succeeded++
		}
	}

	return batch, nil
}

// GetByID retrieves an enquiry by ID
func (s *EnquiryService) GetByID(ctx context.Context, id string) (*entities.Enquiry, error) {
	return s.enquiryRepo.GetByID(ctx, id)
}

// List retrieves enquiries for the administrative surface
func (s *EnquiryService) List(ctx context.Context, filter repositories.EnquiryFilter) ([]*entities.Enquiry, int, error) {
	return s.enquiryRepo.List(ctx, filter)
}

// UpdateStatus applies a workflow transition after checking its legality
func (s *EnquiryService) UpdateStatus(ctx context.Context, id string, next entities.EnquiryStatus) (*entities.Enquiry, error) {
	enquiry, err := s.enquiryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !enquiry.Status.CanTransitionTo(next) {
		return nil, apperrors.NewValidationError(
			"cannot transition enquiry from " + string(enquiry.Status) + " to " + string(next))
	}

	if err := s.enquiryRepo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}

	enquiry.Status = next
	return enquiry, nil
}

// dispatchAfterCreate sends both notifications and publishes the creation
// event without blocking the caller. Failures are logged and dropped.
func (s *EnquiryService) dispatchAfterCreate(enquiry *entities.Enquiry, provider *entities.Provider, requester *entities.Requester) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if s.notifier != nil {
			if err := s.notifier.NotifyProvider(ctx, enquiry, provider, requester); err != nil {
				log.Warn().Err(err).Str("enquiry_id", enquiry.ID).Msg("failed to notify provider")
			}
			if err := s.notifier.ConfirmRequester(ctx, enquiry, provider, requester); err != nil {
				log.Warn().Err(err).Str("enquiry_id", enquiry.ID).Msg("failed to confirm requester")
			}
		}

		if s.eventBus != nil {
			event := &entities.ProviderEvent{
				ID:         uuid.New().String(),
				ProviderID: provider.ID,
				EnquiryID:  enquiry.ID,
				EventType:  entities.EventEnquiryCreated,
				Timestamp:  time.Now(),
			}
			if err := s.eventBus.Publish(ctx, providers.EventChannelEnquiries, event); err != nil {
				log.Warn().Err(err).Str("enquiry_id", enquiry.ID).Msg("failed to publish enquiry event")
			}
		}
	}()
}

func validateQuoteRequest(req QuoteRequest) error {
	if strings.TrimSpace(req.ProviderID) == "" {
		return apperrors.NewValidationError("provider id is required")
	}
	if !emailPattern.MatchString(strings.TrimSpace(req.RequesterEmail)) {
		return apperrors.NewValidationError("a valid requester email is required")
	}
	if strings.TrimSpace(req.RequesterName) == "" {
		return apperrors.NewValidationError("requester name is required")
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
