package repositories

import (
	"context"

	"github.com/adeyela/reviewvault/backend/internal/domain/entities"
)

// ReviewSearchQuery holds the parameters for a review search.
type ReviewSearchQuery struct {
	Query    string
	WidgetID string
	Limit    int
}

// ReviewSearchHit is one indexed review returned from search.
type ReviewSearchHit struct {
	WidgetID string          `json:"widget_id"`
	Review   entities.Review `json:"review"`
}

// ReviewSearchRepository is the optional full-text index over merged reviews.
type ReviewSearchRepository interface {
	InitSchema(ctx context.Context) error
	IndexWidget(ctx context.Context, record *entities.WidgetRecord) error
	DeleteWidget(ctx context.Context, widgetID string) error
	Search(ctx context.Context, query ReviewSearchQuery) ([]ReviewSearchHit, error)
}
