package services

import (
	"context"
	"fmt"
	"time"

	"github.com/adeyela/reviewvault/backend/internal/domain/entities"
	"github.com/adeyela/reviewvault/backend/internal/domain/providers"
	"github.com/adeyela/reviewvault/backend/internal/domain/repositories"
	"github.com/adeyela/reviewvault/backend/internal/infrastructure/observability"
	"github.com/adeyela/reviewvault/backend/pkg/config"
	apperrors "github.com/adeyela/reviewvault/backend/pkg/errors"
)

// RefreshService walks all registered widgets, pulls fresh reviews from the
// widget's source, merges them into the persisted history and rewrites the
// record. Widgets are processed one at a time; a failure on one widget is
// converted into a report entry and never aborts its siblings.
type RefreshService struct {
	widgetRepo  repositories.WidgetRepository
	sources     map[providers.SourceKind]providers.ReviewSource
	searchRepo  repositories.ReviewSearchRepository
	metrics     *observability.Metrics
	defaultKind providers.SourceKind
	reviewLimit int
	credentials map[providers.SourceKind]string
	now         func() time.Time
}

// NewRefreshService creates a refresh service. searchRepo and metrics may be
// nil; indexing and metrics are then skipped.
func NewRefreshService(
	widgetRepo repositories.WidgetRepository,
	sources map[providers.SourceKind]providers.ReviewSource,
	searchRepo repositories.ReviewSearchRepository,
	metrics *observability.Metrics,
	cfg config.SourceConfig,
) *RefreshService {
	limit := cfg.ReviewLimit
	if limit <= 0 {
		limit = 10
	}
	return &RefreshService{
		widgetRepo:  widgetRepo,
		sources:     sources,
		searchRepo:  searchRepo,
		metrics:     metrics,
		defaultKind: providers.SourceKind(cfg.Kind),
		reviewLimit: limit,
		credentials: map[providers.SourceKind]string{
			providers.SourceKindOutscraper: cfg.OutscraperAPIKey,
			providers.SourceKindGoogle:     cfg.GooglePlacesAPIKey,
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Run executes one refresh pass over every widget. Only a failure to
// enumerate widgets, or a completely unconfigured source setup, surfaces as
// an error; everything else lands in the report. Cancellation between
// widgets leaves an incomplete report but no partial widget write.
func (s *RefreshService) Run(ctx context.Context) (*entities.RunReport, error) {
	if len(s.sources) == 0 {
		return nil, apperrors.NewConfigurationError("no review source configured")
	}
	// A widget may name its own source, but the configured default backs
	// every widget that does not. Missing its credential fails the whole
	// run up front instead of stamping every widget as an error.
	if _, ok := s.sources[s.defaultKind]; !ok {
		return nil, apperrors.NewConfigurationError(
			fmt.Sprintf("default review source %q is not configured; check its credential", s.defaultKind))
	}

	widgets, err := s.widgetRepo.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to enumerate widgets", err)
	}

	report := &entities.RunReport{
		StartedAt: s.now(),
		Results:   make([]entities.WidgetOutcome, 0, len(widgets)),
	}

	for _, widget := range widgets {
		if ctx.Err() != nil {
			break
		}

		outcome := s.refreshWidget(ctx, widget)
		observability.RecordRefreshOutcome(ctx, s.metrics, outcome.Status, outcome.NewAdded)

		logger := observability.LoggerFromContext(ctx)
		switch outcome.Status {
		case entities.OutcomeError:
			logger.Error().Str("widget_id", widget.WidgetID).Str("error", outcome.Error).Msg("widget refresh failed")
		case entities.OutcomeSkipped:
			logger.Debug().Str("widget_id", widget.WidgetID).Str("reason", outcome.Reason).Msg("widget refresh skipped")
		default:
			logger.Info().
				Str("widget_id", widget.WidgetID).
				Int("review_count", outcome.ReviewCount).
				Int("new_added", outcome.NewAdded).
				Msg("widget refreshed")
		}

		report.Results = append(report.Results, outcome)
	}

	report.Processed = len(report.Results)
	report.Success = true
	report.FinishedAt = s.now()
	return report, nil
}

// refreshWidget runs the fetch -> normalize -> merge -> persist pipeline for
// one widget and converts any failure into an error outcome.
func (s *RefreshService) refreshWidget(ctx context.Context, widget *entities.WidgetRecord) entities.WidgetOutcome {
	if widget.PlaceID == "" {
		return entities.WidgetOutcome{
			WidgetID: widget.WidgetID,
			Status:   entities.OutcomeSkipped,
			Reason:   "no place_id configured",
		}
	}

	kind := providers.SourceKind(widget.SourceKind)
	if kind == "" {
		kind = s.defaultKind
	}
	source, ok := s.sources[kind]
	if !ok {
		return errorOutcome(widget, fmt.Sprintf("review source %q is not configured", kind))
	}

	batch, err := source.FetchReviews(ctx, widget.PlaceID, s.reviewLimit)
	if err != nil {
		return errorOutcome(widget, err.Error())
	}

	incoming := make([]entities.Review, 0, len(batch.Reviews))
	for _, raw := range batch.Reviews {
		review, err := NormalizeReview(raw, batch.Kind, s.credentials[batch.Kind])
		if err != nil {
			return errorOutcome(widget, err.Error())
		}
		incoming = append(incoming, review)
	}

	merged, newAdded := MergeReviews(widget.Reviews, incoming)
	record := BuildWidgetRecord(widget, batch.Summary, merged, s.now())

	if err := s.widgetRepo.Put(ctx, record); err != nil {
		return errorOutcome(widget, err.Error())
	}

	// Indexing is best effort: a search outage must not fail the widget.
	if s.searchRepo != nil {
		if err := s.searchRepo.IndexWidget(ctx, record); err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Str("widget_id", widget.WidgetID).Err(err).Msg("review index update failed")
		}
	}

	return entities.WidgetOutcome{
		WidgetID:    widget.WidgetID,
		Status:      entities.OutcomeSuccess,
		PlaceID:     widget.PlaceID,
		Rating:      record.Rating,
		ReviewCount: len(record.Reviews),
		NewAdded:    newAdded,
	}
}

func errorOutcome(widget *entities.WidgetRecord, message string) entities.WidgetOutcome {
	return entities.WidgetOutcome{
		WidgetID: widget.WidgetID,
		Status:   entities.OutcomeError,
		PlaceID:  widget.PlaceID,
		Error:    message,
	}
}
