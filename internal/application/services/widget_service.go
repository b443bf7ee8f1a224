package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/adeyela/reviewvault/backend/internal/domain/entities"
	"github.com/adeyela/reviewvault/backend/internal/domain/repositories"
	"github.com/adeyela/reviewvault/backend/internal/infrastructure/observability"
	apperrors "github.com/adeyela/reviewvault/backend/pkg/errors"
)

// WidgetService covers widget registration and lookup. Registration happens
// out of band of the refresh cycle: a widget starts with an empty review
// history and is picked up on the next run.
type WidgetService struct {
	widgetRepo repositories.WidgetRepository
	searchRepo repositories.ReviewSearchRepository
}

// NewWidgetService creates a widget service. searchRepo may be nil.
func NewWidgetService(widgetRepo repositories.WidgetRepository, searchRepo repositories.ReviewSearchRepository) *WidgetService {
	return &WidgetService{
		widgetRepo: widgetRepo,
		searchRepo: searchRepo,
	}
}

// Get returns the full persisted record for one widget.
func (s *WidgetService) Get(ctx context.Context, widgetID string) (*entities.WidgetRecord, error) {
	return s.widgetRepo.GetByID(ctx, widgetID)
}

// List returns lightweight summaries of all registered widgets.
func (s *WidgetService) List(ctx context.Context) ([]*entities.WidgetSummary, error) {
	return s.widgetRepo.ListSummaries(ctx)
}

// Register creates a new widget record with an empty review history. A
// missing widget id gets a generated one; place_id may be empty, which
// leaves the widget inactive until it is set.
func (s *WidgetService) Register(ctx context.Context, widgetID, placeID, sourceKind string) (*entities.WidgetRecord, error) {
	widgetID = strings.TrimSpace(widgetID)
	if widgetID == "" {
		widgetID = uuid.NewString()
	}
	if len(widgetID) > 120 {
		return nil, apperrors.NewValidationError("widget id is too long")
	}

	if existing, err := s.widgetRepo.GetByID(ctx, widgetID); err == nil && existing != nil {
		return nil, apperrors.NewValidationError("widget id already exists")
	} else if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}

	now := time.Now().UTC()
	record := &entities.WidgetRecord{
		WidgetID:    widgetID,
		PlaceID:     strings.TrimSpace(placeID),
		SourceKind:  strings.TrimSpace(sourceKind),
		Reviews:     []entities.Review{},
		CreatedAt:   now,
		LastUpdated: now,
	}

	if err := s.widgetRepo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes a widget and, best effort, its indexed reviews.
func (s *WidgetService) Delete(ctx context.Context, widgetID string) error {
	if err := s.widgetRepo.Delete(ctx, widgetID); err != nil {
		return err
	}
	if s.searchRepo != nil {
		if err := s.searchRepo.DeleteWidget(ctx, widgetID); err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Str("widget_id", widgetID).Err(err).Msg("failed to remove widget from review index")
		}
	}
	return nil
}

// SearchReviews queries the review index.
func (s *WidgetService) SearchReviews(ctx context.Context, query repositories.ReviewSearchQuery) ([]repositories.ReviewSearchHit, error) {
	if s.searchRepo == nil {
		return nil, apperrors.NewConfigurationError("review search is not configured")
	}
	return s.searchRepo.Search(ctx, query)
}
