package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeyela/reviewvault/backend/internal/domain/entities"
	apperrors "github.com/adeyela/reviewvault/backend/pkg/errors"
)

// memoryCache is an in-memory CacheProvider that counts accesses.
type memoryCache struct {
	entries map[string][]byte
	gets    int
	sets    int
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.gets++
	if value, ok := m.entries[key]; ok {
		return value, nil
	}
	return nil, errors.New("key not found")
}

func (m *memoryCache) Set(_ context.Context, key string, value []byte, _ int) error {
	m.sets++
	m.entries[key] = value
	return nil
}

func (m *memoryCache) Delete(_ context.Context, key string) error {
	m.deletes++
	delete(m.entries, key)
	return nil
}

func (m *memoryCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := m.entries[key]
	return ok, nil
}

// countingRepo tracks how often the underlying store is read.
type countingRepo struct {
	records map[string]*entities.WidgetRecord
	getByID int
}

func newCountingRepo(records ...*entities.WidgetRecord) *countingRepo {
	repo := &countingRepo{records: make(map[string]*entities.WidgetRecord)}
	for _, r := range records {
		repo.records[r.WidgetID] = r
	}
	return repo
}

func (c *countingRepo) GetByID(_ context.Context, widgetID string) (*entities.WidgetRecord, error) {
	c.getByID++
	if record, ok := c.records[widgetID]; ok {
		return record, nil
	}
	return nil, apperrors.NewNotFoundError("widget not found")
}

func (c *countingRepo) Create(_ context.Context, record *entities.WidgetRecord) error {
	c.records[record.WidgetID] = record
	return nil
}

func (c *countingRepo) Put(_ context.Context, record *entities.WidgetRecord) error {
	c.records[record.WidgetID] = record
	return nil
}

func (c *countingRepo) Delete(_ context.Context, widgetID string) error {
	delete(c.records, widgetID)
	return nil
}

func (c *countingRepo) List(_ context.Context) ([]*entities.WidgetRecord, error) {
	records := make([]*entities.WidgetRecord, 0, len(c.records))
	for _, r := range c.records {
		records = append(records, r)
	}
	return records, nil
}

func (c *countingRepo) ListSummaries(_ context.Context) ([]*entities.WidgetSummary, error) {
	return nil, nil
}

func cachedWidget(id string, rating float64) *entities.WidgetRecord {
	return &entities.WidgetRecord{
		WidgetID: id,
		PlaceID:  "p-" + id,
		Reviews:  []entities.Review{},
		Rating:   rating,
	}
}

func TestCachedGetByIDReadThrough(t *testing.T) {
	repo := newCountingRepo(cachedWidget("w1", 4.5))
	cache := newMemoryCache()
	adapter := NewCachedWidgetAdapter(repo, cache, nil, 60)
	ctx := context.Background()

	first, err := adapter.GetByID(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getByID)
	assert.Equal(t, 1, cache.sets)

	second, err := adapter.GetByID(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getByID, "second read should come from cache")
	assert.Equal(t, first.WidgetID, second.WidgetID)
	assert.Equal(t, first.Rating, second.Rating)
}

func TestCachedGetByIDMissPassesThroughError(t *testing.T) {
	repo := newCountingRepo()
	adapter := NewCachedWidgetAdapter(repo, newMemoryCache(), nil, 60)

	_, err := adapter.GetByID(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCachedPutInvalidates(t *testing.T) {
	repo := newCountingRepo(cachedWidget("w1", 4.5))
	cache := newMemoryCache()
	adapter := NewCachedWidgetAdapter(repo, cache, nil, 60)
	ctx := context.Background()

	_, err := adapter.GetByID(ctx, "w1")
	require.NoError(t, err)

	updated := cachedWidget("w1", 4.9)
	require.NoError(t, adapter.Put(ctx, updated))
	assert.Equal(t, 1, cache.deletes)

	got, err := adapter.GetByID(ctx, "w1")
	require.NoError(t, err)
	assert.Equal(t, 4.9, got.Rating, "read after write must see the new document")
}

func TestCachedDeleteInvalidates(t *testing.T) {
	repo := newCountingRepo(cachedWidget("w1", 4.5))
	cache := newMemoryCache()
	adapter := NewCachedWidgetAdapter(repo, cache, nil, 60)
	ctx := context.Background()

	_, err := adapter.GetByID(ctx, "w1")
	require.NoError(t, err)

	require.NoError(t, adapter.Delete(ctx, "w1"))

	_, err = adapter.GetByID(ctx, "w1")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCachedListBypassesCache(t *testing.T) {
	repo := newCountingRepo(cachedWidget("w1", 4.5))
	cache := newMemoryCache()
	adapter := NewCachedWidgetAdapter(repo, cache, nil, 60)

	records, err := adapter.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 0, cache.gets, "List must not consult the cache")
}
