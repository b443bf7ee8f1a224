package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adeyela/reviewvault/backend/internal/domain/entities"
	"github.com/adeyela/reviewvault/backend/internal/domain/providers"
	"github.com/adeyela/reviewvault/backend/internal/domain/repositories"
	"github.com/adeyela/reviewvault/backend/internal/infrastructure/observability"
)

// CachedWidgetAdapter wraps a WidgetRepository with a read cache for the
// public widget endpoint. Writes pass through and invalidate the cached
// document so a refresh run is visible on the next read.
type CachedWidgetAdapter struct {
	adapter repositories.WidgetRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
	ttlSecs int
}

// NewCachedWidgetAdapter creates a new cached widget adapter.
func NewCachedWidgetAdapter(adapter repositories.WidgetRepository, cache providers.CacheProvider, metrics *observability.Metrics, ttlSecs int) repositories.WidgetRepository {
	if ttlSecs <= 0 {
		ttlSecs = 60
	}
	return &CachedWidgetAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
		ttlSecs: ttlSecs,
	}
}

func widgetCacheKey(widgetID string) string {
	return fmt.Sprintf("widget:%s", widgetID)
}

// GetByID retrieves a widget record, preferring the cached document.
func (a *CachedWidgetAdapter) GetByID(ctx context.Context, widgetID string) (*entities.WidgetRecord, error) {
	cacheKey := widgetCacheKey(widgetID)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var record entities.WidgetRecord
		if err := json.Unmarshal(cached, &record); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, "widget")
			return &record, nil
		}
	}
	observability.RecordCacheMiss(ctx, a.metrics, "widget")

	record, err := a.adapter.GetByID(ctx, widgetID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(record); err == nil {
		if err := a.cache.Set(ctx, cacheKey, data, a.ttlSecs); err != nil {
			observability.LoggerFromContext(ctx).Warn().
				Str("widget_id", widgetID).Err(err).Msg("failed to cache widget record")
		}
	}

	return record, nil
}

// Create passes through and primes nothing; the first read fills the cache.
func (a *CachedWidgetAdapter) Create(ctx context.Context, record *entities.WidgetRecord) error {
	return a.adapter.Create(ctx, record)
}

// Put writes through and drops the stale cached document.
func (a *CachedWidgetAdapter) Put(ctx context.Context, record *entities.WidgetRecord) error {
	if err := a.adapter.Put(ctx, record); err != nil {
		return err
	}
	a.invalidate(ctx, record.WidgetID)
	return nil
}

// Delete removes the record and its cached document.
func (a *CachedWidgetAdapter) Delete(ctx context.Context, widgetID string) error {
	if err := a.adapter.Delete(ctx, widgetID); err != nil {
		return err
	}
	a.invalidate(ctx, widgetID)
	return nil
}

// List always hits the store; refresh runs need current review histories,
// not cached ones.
func (a *CachedWidgetAdapter) List(ctx context.Context) ([]*entities.WidgetRecord, error) {
	return a.adapter.List(ctx)
}

// ListSummaries always hits the store.
func (a *CachedWidgetAdapter) ListSummaries(ctx context.Context) ([]*entities.WidgetSummary, error) {
	return a.adapter.ListSummaries(ctx)
}

func (a *CachedWidgetAdapter) invalidate(ctx context.Context, widgetID string) {
	if err := a.cache.Delete(ctx, widgetCacheKey(widgetID)); err != nil {
		observability.LoggerFromContext(ctx).Warn().
			Str("widget_id", widgetID).Err(err).Msg("failed to invalidate cached widget record")
	}
}
