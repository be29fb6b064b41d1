package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/adapters/database"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/adapters/search"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/infrastructure/clients/postgres"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/infrastructure/clients/typesense"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/infrastructure/observability"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/query"
	"github.com/TADASHII77/Hsb-projectt-sub000/pkg/config"
)

const indexPageSize = 100

func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete the existing Typesense collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	observability.InitLogger("provider-indexer", os.Getenv("APP_ENV"))

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		parsed, err := time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Str("interval", intervalValue).Err(err).Msg("Invalid interval")
		}
		if parsed <= 0 {
			log.Fatal().Msg("Interval must be greater than zero")
		}
		interval = parsed
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Error().Err(err).Msg("Reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("interval", interval).Msg("Reindex complete, waiting for next run")

		select {
		case <-ctx.Done():
			log.Info().Msg("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		return err
	}
	defer pgClient.Close()

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}

	providerRepo := database.NewProviderAdapter(pgClient)
	suggestIndex := search.NewTypesenseAdapter(tsClient)

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Info().Msg("Dropping providers collection before rebuild")
		if err := suggestIndex.DropCollection(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to drop collection")
		}
	}

	if err := suggestIndex.InitSchema(ctx); err != nil {
		return err
	}

	indexed := 0
	failed := 0

	// Approved listings are the only ones surfaced in suggestions, so the
	// rebuild pages through them directly.
	for page := 1; ; page++ {
		spec, err := query.Compile(query.Input{
			Page:        page,
			PageSize:    indexPageSize,
			MaxPageSize: indexPageSize,
			Status:      entities.StatusApproved,
		})
		if err != nil {
			return err
		}

		result, err := providerRepo.Discover(ctx, spec)
		if err != nil {
			return err
		}
		if len(result.Providers) == 0 {
			break
		}

		for _, provider := range result.Providers {
			if provider == nil {
				continue
			}
			if err := suggestIndex.Index(ctx, provider); err != nil {
				log.Warn().Str("provider_id", provider.ID).Err(err).Msg("Failed to index provider")
				failed++
				continue
			}
			indexed++
		}

		if page*indexPageSize >= result.Total {
			break
		}
	}

	log.Info().Int("indexed", indexed).Int("failed", failed).Msg("Provider reindex finished")
	return nil
}
