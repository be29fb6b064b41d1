package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/repositories"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/query"
)

// CacheWarmingService keeps the hottest discovery pages resident in cache.
// It must be constructed with the caching repository wrapper; running a
// query through it is what populates the cache.
type CacheWarmingService struct {
	repo repositories.ProviderRepository
}

// NewCacheWarmingService creates a new cache warming service
func NewCacheWarmingService(repo repositories.ProviderRepository) *CacheWarmingService {
	return &CacheWarmingService{repo: repo}
}

// WarmCache runs the queries most landing pages issue: the first pages of
// unfiltered discovery plus the verified-only view.
func (s *CacheWarmingService) WarmCache(ctx context.Context) error {
	warmed := 0

	for page := 1; page <= 3; page++ {
		if err := s.runQuery(ctx, query.Input{Page: page, PageSize: query.DefaultPageSize}); err != nil {
			log.Warn().Int("page", page).Err(err).Msg("Failed to warm discovery page")
			continue
		}
		warmed++
	}

	if err := s.runQuery(ctx, query.Input{Page: 1, PageSize: query.DefaultPageSize, VerifiedOnly: true}); err != nil {
		log.Warn().Err(err).Msg("Failed to warm verified-only page")
	} else {
		warmed++
	}

	log.Info().Int("queries", warmed).Msg("Cache warming completed")
	return nil
}

func (s *CacheWarmingService) runQuery(ctx context.Context, in query.Input) error {
	spec, err := query.Compile(in)
	if err != nil {
		return err
	}
	_, err = s.repo.Discover(ctx, spec)
	return err
}

// StartPeriodicWarming warms the cache immediately and then on every tick
// until the context is cancelled. It does not block the caller.
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context, interval time.Duration) {
	go func() {
		if err := s.WarmCache(ctx); err != nil {
			log.Warn().Err(err).Msg("Initial cache warming failed")
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Stopping cache warming service")
				return
			case <-ticker.C:
				if err := s.WarmCache(ctx); err != nil {
					log.Warn().Err(err).Msg("Periodic cache warming failed")
				}
			}
		}
	}()
	log.Info().Dur("interval", interval).Msg("Started periodic cache warming")
}
