package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adeyela/reviewvault/backend/internal/adapters/database"
	"github.com/adeyela/reviewvault/backend/internal/adapters/providers/places"
	"github.com/adeyela/reviewvault/backend/internal/adapters/search"
	"github.com/adeyela/reviewvault/backend/internal/application/services"
	"github.com/adeyela/reviewvault/backend/internal/domain/providers"
	"github.com/adeyela/reviewvault/backend/internal/domain/repositories"
	"github.com/adeyela/reviewvault/backend/internal/infrastructure/clients/postgres"
	"github.com/adeyela/reviewvault/backend/internal/infrastructure/clients/typesense"
	"github.com/adeyela/reviewvault/backend/internal/infrastructure/observability"
	"github.com/adeyela/reviewvault/backend/pkg/config"
)

// refresh runs one review refresh pass over every registered widget and
// prints the run report as JSON. It is meant for host cron schedules and
// manual operation; the API server exposes the same run over HTTP.
func main() {
	var (
		timeout = flag.Duration("timeout", 5*time.Minute, "overall run timeout")
		source  = flag.String("source", "", "override the default review source kind for this run")
		pretty  = flag.Bool("pretty", false, "indent the printed run report")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *source != "" {
		cfg.Source.Kind = *source
	}

	observability.InitLogger(cfg.OTEL.ServiceName+"-refresh", os.Getenv("APP_ENV"))
	logger := observability.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	widgetRepo := database.NewWidgetAdapter(pgClient)

	var searchRepo repositories.ReviewSearchRepository
	if cfg.Typesense.URL != "" {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialize Typesense client; skipping review indexing")
		} else {
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.InitSchema(ctx); err != nil {
				logger.Warn().Err(err).Msg("failed to init Typesense schema")
			}
			searchRepo = adapter
		}
	}

	sources := map[providers.SourceKind]providers.ReviewSource{
		providers.SourceKindMock: places.NewMockSource(),
	}
	if cfg.Source.OutscraperAPIKey != "" {
		sources[providers.SourceKindOutscraper] = places.NewOutscraperSource(cfg.Source.OutscraperAPIKey)
	}
	if cfg.Source.GooglePlacesAPIKey != "" {
		sources[providers.SourceKindGoogle] = places.NewGoogleSource(cfg.Source.GooglePlacesAPIKey)
	}

	service := services.NewRefreshService(widgetRepo, sources, searchRepo, nil, cfg.Source)

	report, err := service.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("refresh run failed")
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		logger.Error().Err(err).Msg("failed to encode run report")
		os.Exit(1)
	}

	if !report.Success {
		os.Exit(1)
	}
}
