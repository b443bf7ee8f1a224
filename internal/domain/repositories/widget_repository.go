package repositories

import (
	"context"

	"github.com/adeyela/reviewvault/backend/internal/domain/entities"
)

// WidgetRepository is the persistence boundary for widget records. The store
// is a keyed document store: Put replaces the whole record, including the
// reviews document, even though the reviews are logically append-only.
type WidgetRepository interface {
	GetByID(ctx context.Context, widgetID string) (*entities.WidgetRecord, error)
	Create(ctx context.Context, record *entities.WidgetRecord) error
	Put(ctx context.Context, record *entities.WidgetRecord) error
	Delete(ctx context.Context, widgetID string) error
	List(ctx context.Context) ([]*entities.WidgetRecord, error)
	ListSummaries(ctx context.Context) ([]*entities.WidgetSummary, error)
}
