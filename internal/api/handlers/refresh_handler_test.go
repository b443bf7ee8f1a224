package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeyela/reviewvault/backend/internal/application/services"
	"github.com/adeyela/reviewvault/backend/internal/domain/entities"
	"github.com/adeyela/reviewvault/backend/internal/domain/providers"
	"github.com/adeyela/reviewvault/backend/pkg/config"
)

type stubSource struct{}

func (stubSource) FetchReviews(_ context.Context, _ string, _ int) (*providers.SourceBatch, error) {
	return &providers.SourceBatch{
		Kind:    providers.SourceKindGoogle,
		Summary: providers.SourceSummary{Rating: 4.5, Total: 10},
		Reviews: []json.RawMessage{
			json.RawMessage(`{"author_name": "Ada", "rating": 5, "time": 1717243200}`),
		},
	}, nil
}

func TestTriggerRefresh(t *testing.T) {
	repo := newStubWidgetRepo(testWidget("w1"))
	service := services.NewRefreshService(
		repo,
		map[providers.SourceKind]providers.ReviewSource{providers.SourceKindGoogle: stubSource{}},
		nil,
		nil,
		config.SourceConfig{Kind: "google"},
	)
	handler := NewRefreshHandler(service, nil, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/cron/refresh", nil)
	rec := httptest.NewRecorder()

	handler.TriggerRefresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report entities.RunReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.Success)
	assert.Equal(t, 1, report.Processed)
	require.Len(t, report.Results, 1)
	assert.Equal(t, entities.OutcomeSuccess, report.Results[0].Status)
}

func TestTriggerRefreshNilService(t *testing.T) {
	handler := NewRefreshHandler(nil, nil, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/cron/refresh", nil)
	rec := httptest.NewRecorder()

	handler.TriggerRefresh(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestTriggerRefreshConfigurationError(t *testing.T) {
	repo := newStubWidgetRepo()
	service := services.NewRefreshService(repo, nil, nil, nil, config.SourceConfig{})
	handler := NewRefreshHandler(service, nil, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/cron/refresh", nil)
	rec := httptest.NewRecorder()

	handler.TriggerRefresh(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "no review source configured")
}

func TestTriggerRefreshDefaultSourceWithoutCredential(t *testing.T) {
	// A default source that could not be built for lack of a credential is
	// a top-level 500, not a 200 full of per-widget errors.
	repo := newStubWidgetRepo(testWidget("w1"))
	service := services.NewRefreshService(
		repo,
		map[providers.SourceKind]providers.ReviewSource{providers.SourceKindMock: stubSource{}},
		nil,
		nil,
		config.SourceConfig{Kind: "outscraper"},
	)
	handler := NewRefreshHandler(service, nil, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/cron/refresh", nil)
	rec := httptest.NewRecorder()

	handler.TriggerRefresh(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], `default review source "outscraper" is not configured`)
}

func TestTriggerRefreshPerWidgetErrorsStayInReport(t *testing.T) {
	// A widget without a place id is skipped, not an HTTP failure.
	repo := newStubWidgetRepo(&entities.WidgetRecord{WidgetID: "idle"})
	service := services.NewRefreshService(
		repo,
		map[providers.SourceKind]providers.ReviewSource{providers.SourceKindGoogle: stubSource{}},
		nil,
		nil,
		config.SourceConfig{Kind: "google"},
	)
	handler := NewRefreshHandler(service, nil, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/cron/refresh", nil)
	rec := httptest.NewRecorder()

	handler.TriggerRefresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report entities.RunReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Results, 1)
	assert.Equal(t, entities.OutcomeSkipped, report.Results[0].Status)
}

func TestTriggerRefreshIdempotencyKeyWithoutRedis(t *testing.T) {
	// Without a redis client the guard is disabled and the run proceeds.
	repo := newStubWidgetRepo(testWidget("w1"))
	service := services.NewRefreshService(
		repo,
		map[providers.SourceKind]providers.ReviewSource{providers.SourceKindGoogle: stubSource{}},
		nil,
		nil,
		config.SourceConfig{Kind: "google"},
	)
	handler := NewRefreshHandler(service, nil, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/cron/refresh", nil)
	req.Header.Set("Idempotency-Key", "run-1")
	rec := httptest.NewRecorder()

	handler.TriggerRefresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report entities.RunReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.True(t, report.Success)
}
