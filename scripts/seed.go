package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/adeyela/reviewvault/backend/internal/adapters/database"
	"github.com/adeyela/reviewvault/backend/internal/adapters/providers/places"
	"github.com/adeyela/reviewvault/backend/internal/application/services"
	"github.com/adeyela/reviewvault/backend/internal/domain/entities"
	"github.com/adeyela/reviewvault/backend/internal/domain/providers"
	"github.com/adeyela/reviewvault/backend/internal/infrastructure/clients/postgres"
	"github.com/adeyela/reviewvault/backend/pkg/config"
)

const createWidgetsTable = `
CREATE TABLE IF NOT EXISTS widgets (
	widget_id          TEXT PRIMARY KEY,
	place_id           TEXT NOT NULL DEFAULT '',
	source_kind        TEXT NOT NULL DEFAULT '',
	reviews            JSONB NOT NULL DEFAULT '[]',
	rating             DOUBLE PRECISION NOT NULL DEFAULT 0,
	user_ratings_total INTEGER NOT NULL DEFAULT 0,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_updated       TIMESTAMPTZ NOT NULL DEFAULT now()
)`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pgClient.Close()

	ctx := context.Background()

	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping widgets table before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, "DROP TABLE IF EXISTS widgets"); err != nil {
			log.Fatalf("Failed to drop widgets table: %v", err)
		}
	}

	if _, err := pgClient.DB().ExecContext(ctx, createWidgetsTable); err != nil {
		log.Fatalf("Failed to create widgets table: %v", err)
	}
	log.Println("widgets table ready")

	widgetRepo := database.NewWidgetAdapter(pgClient)

	// Seed the default widget with one pass through the mock source so the
	// public endpoint serves real-shaped data out of the box.
	now := time.Now().UTC()
	record := &entities.WidgetRecord{
		WidgetID:   cfg.Widget.DefaultID,
		PlaceID:    "mock-place-1",
		SourceKind: string(providers.SourceKindMock),
		Reviews:    []entities.Review{},
		CreatedAt:  now,
	}
	if err := widgetRepo.Create(ctx, record); err != nil {
		log.Printf("Default widget not created (may already exist): %v", err)
	} else {
		log.Printf("Created default widget %q", record.WidgetID)
	}

	mock := places.NewMockSource()
	batch, err := mock.FetchReviews(ctx, record.PlaceID, cfg.Source.ReviewLimit)
	if err != nil {
		log.Fatalf("Failed to fetch mock reviews: %v", err)
	}

	stored, err := widgetRepo.GetByID(ctx, cfg.Widget.DefaultID)
	if err != nil {
		log.Fatalf("Failed to load default widget: %v", err)
	}

	incoming := make([]entities.Review, 0, len(batch.Reviews))
	for _, raw := range batch.Reviews {
		review, err := services.NormalizeReview(raw, batch.Kind, "")
		if err != nil {
			log.Fatalf("Failed to normalize mock review: %v", err)
		}
		incoming = append(incoming, review)
	}

	merged, added := services.MergeReviews(stored.Reviews, incoming)
	updated := services.BuildWidgetRecord(stored, batch.Summary, merged, time.Now().UTC())
	if err := widgetRepo.Put(ctx, updated); err != nil {
		log.Fatalf("Failed to store seeded widget: %v", err)
	}

	log.Printf("Seeded widget %q with %d reviews (%d new)", updated.WidgetID, len(updated.Reviews), added)
}
