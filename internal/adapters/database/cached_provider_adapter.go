package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/providers"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/repositories"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/query"
)

// CachedProviderAdapter wraps a ProviderRepository with Redis caching.
// Reads are cache-first; writes go straight through and invalidate
// asynchronously so the request path never waits on Redis.
type CachedProviderAdapter struct {
	adapter repositories.ProviderRepository
	cache   providers.CacheProvider
}

// NewCachedProviderAdapter creates a new cached provider adapter
func NewCachedProviderAdapter(adapter repositories.ProviderRepository, cache providers.CacheProvider) repositories.ProviderRepository {
	return &CachedProviderAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	providerByIDTTL    = 300 // 5 minutes for a single listing
	discoveryResultTTL = 120 // 2 minutes for discovery pages
)

func providerCacheKey(id string) string {
	return fmt.Sprintf("provider:%s", id)
}

func discoveryCacheKey(spec query.Spec) string {
	// Spec is a plain value; its JSON form is a stable fingerprint of
	// every predicate plus ordering and pagination.
	specJSON, _ := json.Marshal(spec)
	return fmt.Sprintf("providers:discover:%s", specJSON)
}

// GetByID retrieves a provider by ID with caching
func (a *CachedProviderAdapter) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	cacheKey := providerCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var provider entities.Provider
		if err := json.Unmarshal(cached, &provider); err == nil {
			return &provider, nil
		}
		log.Warn().Err(err).Str("provider_id", id).Msg("failed to unmarshal cached provider")
	}

	provider, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(provider); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, providerByIDTTL); err != nil {
				log.Warn().Err(err).Str("provider_id", id).Msg("failed to cache provider")
			}
		}
	}()

	return provider, nil
}

// GetByIDs retrieves multiple providers, serving per-ID cache hits and
// fetching only the misses.
func (a *CachedProviderAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Provider, error) {
	if len(ids) == 0 {
		return []*entities.Provider{}, nil
	}

	cached := make([]*entities.Provider, 0, len(ids))
	missing := make([]string, 0)

	for _, id := range ids {
		data, err := a.cache.Get(ctx, providerCacheKey(id))
		if err != nil {
			missing = append(missing, id)
			continue
		}
		var provider entities.Provider
		if err := json.Unmarshal(data, &provider); err != nil {
			missing = append(missing, id)
			continue
		}
		cached = append(cached, &provider)
	}

	if len(missing) == 0 {
		return cached, nil
	}

	fetched, err := a.adapter.GetByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		for _, provider := range fetched {
			if data, err := json.Marshal(provider); err == nil {
				if err := a.cache.Set(bgCtx, providerCacheKey(provider.ID), data, providerByIDTTL); err != nil {
					log.Warn().Err(err).Str("provider_id", provider.ID).Msg("failed to cache provider")
				}
			}
		}
	}()

	return append(cached, fetched...), nil
}

type cachedDiscoveryResult struct {
	Providers []*entities.Provider `json:"providers"`
	Total     int                  `json:"total"`
}

// Discover executes a discovery spec with result caching
func (a *CachedProviderAdapter) Discover(ctx context.Context, spec query.Spec) (*repositories.DiscoveryResult, error) {
	cacheKey := discoveryCacheKey(spec)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var result cachedDiscoveryResult
		if err := json.Unmarshal(cached, &result); err == nil {
			return &repositories.DiscoveryResult{Providers: result.Providers, Total: result.Total}, nil
		}
		log.Warn().Err(err).Msg("failed to unmarshal cached discovery result")
	}

	result, err := a.adapter.Discover(ctx, spec)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		payload := cachedDiscoveryResult{Providers: result.Providers, Total: result.Total}
		if data, err := json.Marshal(payload); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, discoveryResultTTL); err != nil {
				log.Warn().Err(err).Msg("failed to cache discovery result")
			}
		}
	}()

	return result, nil
}

// Create creates a provider and invalidates discovery caches
func (a *CachedProviderAdapter) Create(ctx context.Context, provider *entities.Provider) error {
	if err := a.adapter.Create(ctx, provider); err != nil {
		return err
	}
	go a.invalidate(provider.ID)
	return nil
}

// Update updates a provider and invalidates its caches
func (a *CachedProviderAdapter) Update(ctx context.Context, provider *entities.Provider) error {
	if err := a.adapter.Update(ctx, provider); err != nil {
		return err
	}
	go a.invalidate(provider.ID)
	return nil
}

// SetVerified updates the verified flag and invalidates caches
func (a *CachedProviderAdapter) SetVerified(ctx context.Context, id string, verified bool) error {
	if err := a.adapter.SetVerified(ctx, id, verified); err != nil {
		return err
	}
	go a.invalidate(id)
	return nil
}

// Delete deletes a provider and invalidates its caches
func (a *CachedProviderAdapter) Delete(ctx context.Context, id string) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}
	go a.invalidate(id)
	return nil
}

func (a *CachedProviderAdapter) invalidate(id string) {
	bgCtx := context.Background()

	if err := a.cache.Delete(bgCtx, providerCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("provider_id", id).Msg("failed to invalidate provider cache")
	}
	if err := a.cache.DeletePattern(bgCtx, "providers:discover:*"); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate discovery cache")
	}
}
