package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/adapters/cache"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/adapters/database"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/adapters/events"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/adapters/search"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/api/handlers"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/api/middleware"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/api/routes"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/application/services"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/providers"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/repositories"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/infrastructure/clients/postgres"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/infrastructure/clients/redis"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/infrastructure/clients/typesense"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/infrastructure/notifications"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/infrastructure/observability"
	"github.com/TADASHII77/Hsb-projectt-sub000/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Redis is optional; without it the API runs uncached and without events.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	// Typesense is optional; without it suggestions return empty results.
	typesenseClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to initialize Typesense client, continuing without suggestions")
		typesenseClient = nil
	} else {
		log.Info().Msg("Typesense client initialized")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	var eventBus providers.EventBus
	if redisClient != nil {
		eventBus = events.NewRedisEventBus(redisClient)
		log.Info().Msg("Event bus initialized")
	}

	baseProviderAdapter := database.NewProviderAdapter(pgClient)

	var providerRepo repositories.ProviderRepository
	if cacheProvider != nil {
		providerRepo = database.NewCachedProviderAdapter(baseProviderAdapter, cacheProvider)
		log.Info().Msg("Provider adapter wrapped with caching layer")
	} else {
		providerRepo = baseProviderAdapter
		log.Warn().Msg("Provider adapter running without cache")
	}

	requesterRepo := database.NewRequesterAdapter(pgClient)
	enquiryRepo := database.NewEnquiryAdapter(pgClient)

	var suggestRepo repositories.ProviderSuggestRepository
	if typesenseClient != nil {
		adapter := search.NewTypesenseAdapter(typesenseClient)
		if err := adapter.InitSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to init Typesense schema")
		}
		suggestRepo = adapter
	}

	// Mail delivery is optional; without it enquiries are persisted but
	// notifications are skipped.
	var notifier providers.NotificationProvider
	mailSender, err := notifications.NewMailSender(&cfg.Mail)
	if err != nil {
		log.Warn().Err(err).Msg("Mail sender not configured, notifications disabled")
	} else {
		notifier = services.NewNotificationService(
			sqlx.NewDb(pgClient.DB(), "postgres"),
			mailSender,
		)
		log.Info().Msg("Notification service initialized")
	}

	providerService := services.NewProviderService(providerRepo, suggestRepo, eventBus)
	enquiryService := services.NewEnquiryService(
		providerRepo,
		requesterRepo,
		enquiryRepo,
		notifier,
		eventBus,
		cfg.Enquiry.DefaultQuota,
		cfg.Enquiry.BulkLimit,
	)

	var cacheInvalidationService *services.CacheInvalidationService
	if cacheProvider != nil && eventBus != nil {
		cacheInvalidationService = services.NewCacheInvalidationService(cacheProvider, eventBus)
		if err := cacheInvalidationService.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start cache invalidation service")
		} else {
			log.Info().Msg("Cache invalidation service started")
		}
	}

	if cacheProvider != nil {
		warmingService := services.NewCacheWarmingService(providerRepo)
		warmingService.StartPeriodicWarming(ctx, 5*time.Minute)
	}

	providerHandler := handlers.NewProviderHandler(providerService, cfg.Enquiry.MaxPageSize)
	enquiryHandler := handlers.NewEnquiryHandler(enquiryService)

	var cacheMiddleware *middleware.CacheMiddleware
	if cacheProvider != nil {
		cacheMiddleware = middleware.NewCacheMiddleware(cacheProvider)
	}

	router := routes.NewRouter(providerHandler, enquiryHandler, cacheMiddleware, metrics)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event bus")
		}
	}

	if cacheInvalidationService != nil {
		cacheInvalidationService.Stop()
	}

	log.Info().Msg("Server stopped")
}
