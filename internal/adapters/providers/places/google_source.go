package places

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/adeyela/reviewvault/backend/internal/domain/providers"
	apperrors "github.com/adeyela/reviewvault/backend/pkg/errors"
)

const googleDetailsURL = "https://maps.googleapis.com/maps/api/place/details/json"

// GoogleSource fetches reviews through the Google Places details API.
// Responses use the nested field layout (author_name, rating, time, ...).
// The API caps reviews at five per call, so histories beyond that rely on
// the persisted merge.
type GoogleSource struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewGoogleSource creates a new Google Places review source.
func NewGoogleSource(apiKey string) *GoogleSource {
	return NewGoogleSourceWithOptions(apiKey, googleDetailsURL, nil)
}

// NewGoogleSourceWithOptions allows overriding base URL and HTTP client
// (used for tests).
func NewGoogleSourceWithOptions(apiKey, baseURL string, httpClient *http.Client) *GoogleSource {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = googleDetailsURL
	}
	if httpClient == nil {
		httpClient = newRetryingClient()
	}
	return &GoogleSource{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// FetchReviews pulls the newest reviews for a place.
func (s *GoogleSource) FetchReviews(ctx context.Context, placeID string, limit int) (*providers.SourceBatch, error) {
	if strings.TrimSpace(s.apiKey) == "" {
		return nil, apperrors.NewConfigurationError("google places api key is not set")
	}
	if strings.TrimSpace(placeID) == "" {
		return nil, apperrors.NewProviderError("place id is required", nil)
	}
	if limit <= 0 {
		limit = 5
	}

	query := url.Values{}
	query.Set("place_id", placeID)
	query.Set("fields", "rating,user_ratings_total,reviews")
	query.Set("reviews_sort", "newest")
	query.Set("key", s.apiKey)

	body, err := fetchJSON(ctx, s.httpClient, s.baseURL+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(body)
	if status := parsed.Get("status").String(); status != "OK" {
		message := parsed.Get("error_message").String()
		if message == "" {
			message = status
		}
		return nil, apperrors.NewProviderError(fmt.Sprintf("google places error: %s", message), nil)
	}

	result := parsed.Get("result")
	if !result.Exists() {
		return nil, apperrors.NewProviderError("google places returned no result", nil)
	}

	batch := &providers.SourceBatch{
		Kind: providers.SourceKindGoogle,
		Summary: providers.SourceSummary{
			Rating: result.Get("rating").Float(),
			Total:  int(result.Get("user_ratings_total").Int()),
		},
		Reviews: []json.RawMessage{},
	}

	result.Get("reviews").ForEach(func(_, review gjson.Result) bool {
		if len(batch.Reviews) >= limit {
			return false
		}
		batch.Reviews = append(batch.Reviews, json.RawMessage(review.Raw))
		return true
	})

	return batch, nil
}
