package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adeyela/reviewvault/backend/internal/domain/providers"
	apperrors "github.com/adeyela/reviewvault/backend/pkg/errors"
)

func TestOutscraperFetchReviews(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"query":        r.URL.Query().Get("query"),
			"reviewsLimit": r.URL.Query().Get("reviewsLimit"),
			"sort":         r.URL.Query().Get("sort"),
			"api_key":      r.URL.Query().Get("api_key"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "Success",
			"data": [{
				"rating": 4.6,
				"reviews": 213,
				"reviews_data": [
					{"author_title": "Ada", "review_rating": 5, "review_timestamp": 1700000000},
					{"author_title": "Tunde", "review_rating": 4, "review_timestamp": 1699000000}
				]
			}]
		}`))
	}))
	defer server.Close()

	source := NewOutscraperSourceWithOptions("key-123", server.URL, server.Client())

	batch, err := source.FetchReviews(context.Background(), "ChIJplace", 10)
	require.NoError(t, err)

	assert.Equal(t, providers.SourceKindOutscraper, batch.Kind)
	assert.Equal(t, 4.6, batch.Summary.Rating)
	assert.Equal(t, 213, batch.Summary.Total)
	require.Len(t, batch.Reviews, 2)

	assert.Equal(t, "ChIJplace", gotQuery["query"])
	assert.Equal(t, "10", gotQuery["reviewsLimit"])
	assert.Equal(t, "newest", gotQuery["sort"])
	assert.Equal(t, "key-123", gotQuery["api_key"])
}

func TestOutscraperFetchReviewsUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "Error", "message": "quota exceeded"}`))
	}))
	defer server.Close()

	source := NewOutscraperSourceWithOptions("key-123", server.URL, server.Client())

	_, err := source.FetchReviews(context.Background(), "ChIJplace", 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeProvider))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestOutscraperFetchReviewsNoData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "Success", "data": []}`))
	}))
	defer server.Close()

	source := NewOutscraperSourceWithOptions("key-123", server.URL, server.Client())

	_, err := source.FetchReviews(context.Background(), "ChIJplace", 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeProvider))
}

func TestOutscraperFetchReviewsBadStatusCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	source := NewOutscraperSourceWithOptions("key-123", server.URL, server.Client())

	_, err := source.FetchReviews(context.Background(), "ChIJplace", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestOutscraperFetchReviewsMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer server.Close()

	source := NewOutscraperSourceWithOptions("key-123", server.URL, server.Client())

	_, err := source.FetchReviews(context.Background(), "ChIJplace", 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeProvider))
}

func TestOutscraperFetchReviewsMissingKey(t *testing.T) {
	source := NewOutscraperSourceWithOptions("", "http://unused", nil)

	_, err := source.FetchReviews(context.Background(), "ChIJplace", 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConfiguration))
}

func TestOutscraperFetchReviewsMissingPlaceID(t *testing.T) {
	source := NewOutscraperSourceWithOptions("key-123", "http://unused", nil)

	_, err := source.FetchReviews(context.Background(), "  ", 10)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeProvider))
}
