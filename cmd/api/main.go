package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/adeyela/reviewvault/backend/internal/adapters/cache"
	"github.com/adeyela/reviewvault/backend/internal/adapters/database"
	"github.com/adeyela/reviewvault/backend/internal/adapters/providers/places"
	"github.com/adeyela/reviewvault/backend/internal/adapters/search"
	"github.com/adeyela/reviewvault/backend/internal/api/handlers"
	"github.com/adeyela/reviewvault/backend/internal/api/routes"
	"github.com/adeyela/reviewvault/backend/internal/application/services"
	"github.com/adeyela/reviewvault/backend/internal/domain/providers"
	"github.com/adeyela/reviewvault/backend/internal/domain/repositories"
	"github.com/adeyela/reviewvault/backend/internal/infrastructure/clients/postgres"
	"github.com/adeyela/reviewvault/backend/internal/infrastructure/clients/redis"
	"github.com/adeyela/reviewvault/backend/internal/infrastructure/clients/typesense"
	"github.com/adeyela/reviewvault/backend/internal/infrastructure/observability"
	"github.com/adeyela/reviewvault/backend/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, os.Getenv("APP_ENV"))
	logger := observability.GetLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					logger.Warn().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			logger.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()

	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		// The service works without redis; reads just skip the cache.
		logger.Warn().Err(err).Msg("failed to initialize Redis client; continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	baseWidgetAdapter := database.NewWidgetAdapter(pgClient)
	var widgetRepo repositories.WidgetRepository = baseWidgetAdapter
	if cacheProvider != nil {
		widgetRepo = database.NewCachedWidgetAdapter(baseWidgetAdapter, cacheProvider, metrics, cfg.Widget.CacheTTLSecs)
		logger.Info().Msg("widget adapter wrapped with caching layer")
	}

	var searchRepo repositories.ReviewSearchRepository
	if cfg.Typesense.URL != "" {
		tsClient, err := typesense.NewClient(&cfg.Typesense)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialize Typesense client; review search disabled")
		} else {
			adapter := search.NewTypesenseAdapter(tsClient)
			if err := adapter.InitSchema(context.Background()); err != nil {
				logger.Warn().Err(err).Msg("failed to init Typesense schema")
			}
			searchRepo = adapter
		}
	}

	sources := buildSources(cfg.Source, logger)

	refreshService := services.NewRefreshService(widgetRepo, sources, searchRepo, metrics, cfg.Source)
	widgetService := services.NewWidgetService(widgetRepo, searchRepo)

	widgetHandler := handlers.NewWidgetHandler(widgetService, cfg.Widget.DefaultID)
	widgetAdminHandler := handlers.NewWidgetAdminHandler(widgetService)
	reviewSearchHandler := handlers.NewReviewSearchHandler(widgetService)

	var refreshHandler *handlers.RefreshHandler
	if redisClient != nil {
		refreshHandler = handlers.NewRefreshHandler(refreshService, redisClient.Client(), 0)
	} else {
		refreshHandler = handlers.NewRefreshHandler(refreshService, nil, 0)
	}

	router := routes.NewRouter(
		widgetHandler,
		widgetAdminHandler,
		refreshHandler,
		reviewSearchHandler,
		metrics,
	)
	handler := router.SetupRoutes()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("error during server shutdown")
	}
}

// buildSources constructs one review source per kind that has credentials
// configured. The mock source is always available for local development.
func buildSources(cfg config.SourceConfig, logger *zerolog.Logger) map[providers.SourceKind]providers.ReviewSource {
	sources := map[providers.SourceKind]providers.ReviewSource{
		providers.SourceKindMock: places.NewMockSource(),
	}
	if cfg.OutscraperAPIKey != "" {
		sources[providers.SourceKindOutscraper] = places.NewOutscraperSource(cfg.OutscraperAPIKey)
	}
	if cfg.GooglePlacesAPIKey != "" {
		sources[providers.SourceKindGoogle] = places.NewGoogleSource(cfg.GooglePlacesAPIKey)
	}

	kinds := make([]string, 0, len(sources))
	for kind := range sources {
		kinds = append(kinds, string(kind))
	}
	logger.Info().Strs("sources", kinds).Str("default", cfg.Kind).Msg("review sources configured")

	return sources
}
