package places

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/adeyela/reviewvault/backend/internal/domain/providers"
)

// MockSource serves a canned, deterministic batch for local development and
// tests. Payloads use the nested (google-style) field layout.
type MockSource struct{}

// NewMockSource creates a new mock review source.
func NewMockSource() *MockSource {
	return &MockSource{}
}

// FetchReviews returns the canned batch, truncated to limit.
func (s *MockSource) FetchReviews(ctx context.Context, placeID string, limit int) (*providers.SourceBatch, error) {
	if limit <= 0 {
		limit = 10
	}

	canned := []string{
		fmt.Sprintf(`{"author_name":"Ada Obi","rating":5,"text":"Fantastic service at %s.","time":1700000000,"relative_time_description":"a month ago","photos":[]}`, placeID),
		`{"author_name":"Tunde Bakare","rating":4,"text":"Solid experience overall.","time":1699000000,"relative_time_description":"2 months ago","photos":[]}`,
		`{"author_name":"Chiamaka Eze","rating":5,"text":"","time":1698000000,"relative_time_description":"2 months ago","photos":[]}`,
	}
	if len(canned) > limit {
		canned = canned[:limit]
	}

	batch := &providers.SourceBatch{
		Kind: providers.SourceKindMock,
		Summary: providers.SourceSummary{
			Rating: 4.7,
			Total:  128,
		},
		Reviews: make([]json.RawMessage, 0, len(canned)),
	}
	for _, payload := range canned {
		batch.Reviews = append(batch.Reviews, json.RawMessage(payload))
	}
	return batch, nil
}
