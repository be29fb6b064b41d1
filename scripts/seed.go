package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/adapters/database"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/adapters/search"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/infrastructure/clients/postgres"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/infrastructure/clients/typesense"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/infrastructure/observability"
	"github.com/TADASHII77/Hsb-projectt-sub000/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	observability.InitLogger("seed", cfg.Server.Env)

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	var suggestIndex *search.TypesenseAdapter
	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		log.Warn().Err(err).Msg("Typesense unavailable, seeding database only")
	} else {
		suggestIndex = search.NewTypesenseAdapter(tsClient)
		if err := suggestIndex.InitSchema(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Failed to init Typesense schema")
		}
	}

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				enquiry_notifications,
				enquiries,
				requesters,
				providers
			RESTART IDENTITY CASCADE
		`)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to truncate tables")
		}
	}

	providerRepo := database.NewProviderAdapter(pgClient)
	requesterRepo := database.NewRequesterAdapter(pgClient)

	now := time.Now()

	providers := []*entities.Provider{
		{
			ID:        uuid.New().String(),
			OwnerName: "Olumide Electrics",
			Email:     "olumide@example.com",
			Phone:     "+2348011111111",
			Category:  "Electrician",
			Services:  []string{"wiring", "solar installation", "generator repair"},
			Description: "Residential and commercial electrical work with " +
				"solar and inverter installations.",
			Address: entities.Address{
				Street:  "14 Adeola Odeku St",
				City:    "Lagos",
				Region:  "Victoria Island",
				State:   "Lagos",
				Country: "Nigeria",
			},
			ServiceRadius: entities.ServiceRadius{
				OriginCity: "Lagos",
				Distance:   "20 km",
			},
			PaymentMethods: []string{"cash", "transfer"},
			Insured:        true,
			Rating:         4.7,
			ReviewCount:    128,
			Verified:       true,
			Status:         entities.StatusApproved,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:        uuid.New().String(),
			OwnerName: "Chika Plumbing Works",
			Email:     "chika@example.com",
			Phone:     "+2348022222222",
			Category:  "Plumber",
			Services:  []string{"pipe repair", "water heater installation"},
			Description: "Emergency plumbing and bathroom fittings across " +
				"the mainland.",
			Address: entities.Address{
				Street:  "3 Allen Avenue",
				City:    "Ikeja",
				Region:  "Ikeja",
				State:   "Lagos",
				Country: "Nigeria",
			},
			ServiceRadius: entities.ServiceRadius{
				OriginCity: "Ikeja",
				Distance:   "10 km",
			},
			PaymentMethods: []string{"cash", "card", "transfer"},
			Insured:        false,
			Rating:         4.2,
			ReviewCount:    54,
			Verified:       true,
			Status:         entities.StatusApproved,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:          uuid.New().String(),
			OwnerName:   "Abuja Roof Masters",
			Email:       "roofmasters@example.com",
			Phone:       "+2348033333333",
			Category:    "Roofer",
			Services:    []string{"roof repair", "gutter installation"},
			Description: "Stone-coated and aluminium roofing specialists.",
			Address: entities.Address{
				Street:  "22 Gana St, Maitama",
				City:    "Abuja",
				Region:  "Maitama",
				State:   "FCT",
				Country: "Nigeria",
			},
			ServiceRadius: entities.ServiceRadius{
				OriginCity: "Abuja",
				Distance:   "more than 50 km",
			},
			PaymentMethods: []string{"transfer"},
			Insured:        true,
			Rating:         4.9,
			ReviewCount:    203,
			Verified:       true,
			Status:         entities.StatusApproved,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:          uuid.New().String(),
			OwnerName:   "Fresh Start Cleaning",
			Email:       "freshstart@example.com",
			Phone:       "+2348044444444",
			Category:    "Cleaner",
			Services:    []string{"deep cleaning", "post-construction cleaning"},
			Description: "Home and office cleaning crews, same-day booking.",
			Address: entities.Address{
				Street:  "8 Awolowo Rd",
				City:    "Lagos",
				Region:  "Ikoyi",
				State:   "Lagos",
				Country: "Nigeria",
			},
			ServiceRadius: entities.ServiceRadius{
				OriginCity: "Lagos",
				Distance:   "5 km",
			},
			PaymentMethods: []string{"cash", "transfer"},
			Insured:        false,
			Rating:         3.8,
			ReviewCount:    17,
			Verified:       false,
			Status:         entities.StatusApproved,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
		{
			ID:          uuid.New().String(),
			OwnerName:   "Pending Painters Co",
			Email:       "pendingpainters@example.com",
			Phone:       "+2348055555555",
			Category:    "Painter",
			Services:    []string{"interior painting", "exterior painting"},
			Description: "Awaiting review, should not surface in discovery.",
			Address: entities.Address{
				Street:  "1 Broad St",
				City:    "Lagos",
				Region:  "Island",
				State:   "Lagos",
				Country: "Nigeria",
			},
			ServiceRadius: entities.ServiceRadius{
				OriginCity: "Lagos",
				Distance:   "15 km",
			},
			PaymentMethods: []string{"cash"},
			Rating:         0,
			Status:         entities.StatusPending,
			CreatedAt:      now,
			UpdatedAt:      now,
		},
	}

	seeded := 0
	for _, provider := range providers {
		if err := providerRepo.Create(ctx, provider); err != nil {
			log.Warn().Str("owner", provider.OwnerName).Err(err).Msg("Failed to seed provider")
			continue
		}
		seeded++

		if suggestIndex != nil && provider.Status == entities.StatusApproved {
			if err := suggestIndex.Index(ctx, provider); err != nil {
				log.Warn().Str("owner", provider.OwnerName).Err(err).Msg("Failed to index provider")
			}
		}
	}

	requester := &entities.Requester{
		ID:           uuid.New().String(),
		Email:        "homeowner@example.com",
		Name:         "Ada Homeowner",
		Phone:        "+2348066666666",
		EnquiryCount: cfg.Enquiry.DefaultQuota,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := requesterRepo.Upsert(ctx, requester); err != nil {
		log.Warn().Err(err).Msg("Failed to seed requester")
	}

	log.Info().Int("providers", seeded).Msg("Seeding complete")
}
