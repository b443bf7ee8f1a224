package providers

import (
	"context"
	"encoding/json"
)

// SourceKind tags which upstream format a raw review payload uses. The
// normalizer selects its field mapping by this tag rather than sniffing
// fields.
type SourceKind string

const (
	SourceKindOutscraper SourceKind = "outscraper"
	SourceKindGoogle     SourceKind = "google"
	SourceKindMock       SourceKind = "mock"
)

// SourceSummary carries the provider's current top-level aggregate. Zero
// values mean the provider omitted the field on this call.
type SourceSummary struct {
	Rating float64
	Total  int
}

// SourceBatch is one fetch result: the aggregate summary plus the raw
// provider-shaped review payloads, in provider order.
type SourceBatch struct {
	Kind    SourceKind
	Summary SourceSummary
	Reviews []json.RawMessage
}

// ReviewSource is the upstream review-data boundary. Implementations fetch
// up to limit reviews for a place, newest first, without reshaping them.
type ReviewSource interface {
	FetchReviews(ctx context.Context, placeID string, limit int) (*SourceBatch, error)
}
