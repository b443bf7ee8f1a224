package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/adeyela/reviewvault/backend/internal/domain/providers"
	apperrors "github.com/adeyela/reviewvault/backend/pkg/errors"
)

const (
	outscraperBaseURL  = "https://api.app.outscraper.com/maps/reviews-v3"
	defaultHTTPTimeout = 30 * time.Second
)

// OutscraperSource fetches reviews through the Outscraper maps reviews API.
// Responses use the flat field layout (author_title, review_rating, ...).
type OutscraperSource struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOutscraperSource creates a new Outscraper review source.
func NewOutscraperSource(apiKey string) *OutscraperSource {
	return NewOutscraperSourceWithOptions(apiKey, outscraperBaseURL, nil)
}

// NewOutscraperSourceWithOptions allows overriding base URL and HTTP client
// (used for tests).
func NewOutscraperSourceWithOptions(apiKey, baseURL string, httpClient *http.Client) *OutscraperSource {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = outscraperBaseURL
	}
	if httpClient == nil {
		httpClient = newRetryingClient()
	}
	return &OutscraperSource{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// FetchReviews pulls up to limit reviews for a place, newest first.
func (s *OutscraperSource) FetchReviews(ctx context.Context, placeID string, limit int) (*providers.SourceBatch, error) {
	if strings.TrimSpace(s.apiKey) == "" {
		return nil, apperrors.NewConfigurationError("outscraper api key is not set")
	}
	if strings.TrimSpace(placeID) == "" {
		return nil, apperrors.NewProviderError("place id is required", nil)
	}
	if limit <= 0 {
		limit = 10
	}

	query := url.Values{}
	query.Set("query", placeID)
	query.Set("reviewsLimit", strconv.Itoa(limit))
	query.Set("sort", "newest")
	query.Set("async", "false")
	query.Set("api_key", s.apiKey)

	body, err := fetchJSON(ctx, s.httpClient, s.baseURL+"?"+query.Encode())
	if err != nil {
		return nil, err
	}

	parsed := gjson.ParseBytes(body)
	if status := parsed.Get("status"); status.Exists() && status.String() != "Success" && !parsed.Get("data").Exists() {
		message := parsed.Get("message").String()
		if message == "" {
			message = "unknown error"
		}
		return nil, apperrors.NewProviderError(fmt.Sprintf("outscraper error: %s", message), nil)
	}

	// One result per query; we queried a single place id.
	place := parsed.Get("data.0")
	if !place.Exists() {
		return nil, apperrors.NewProviderError("outscraper returned no data for place", nil)
	}

	batch := &providers.SourceBatch{
		Kind: providers.SourceKindOutscraper,
		Summary: providers.SourceSummary{
			Rating: place.Get("rating").Float(),
			Total:  int(place.Get("reviews").Int()),
		},
		Reviews: []json.RawMessage{},
	}

	place.Get("reviews_data").ForEach(func(_, review gjson.Result) bool {
		batch.Reviews = append(batch.Reviews, json.RawMessage(review.Raw))
		return true
	})

	return batch, nil
}

// newRetryingClient builds an HTTP client that retries transient upstream
// failures before giving up.
func newRetryingClient() *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.HTTPClient.Timeout = defaultHTTPTimeout
	retryClient.Logger = nil
	return retryClient.StandardClient()
}

func fetchJSON(ctx context.Context, client *http.Client, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewProviderError("failed to build provider request", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, apperrors.NewProviderError("provider request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewProviderError(fmt.Sprintf("provider returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewProviderError("failed to read provider response", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, apperrors.NewProviderError("provider returned malformed JSON", nil)
	}
	return body, nil
}
