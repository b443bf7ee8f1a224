package services

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/adeyela/reviewvault/backend/internal/domain/providers"
	apperrors "github.com/adeyela/reviewvault/backend/pkg/errors"
)

func TestNormalizeOutscraperReview(t *testing.T) {
	raw := json.RawMessage(`{
		"review_id": "osr-42",
		"author_title": "Ada Lovelace",
		"author_link": "https://maps.example/ada",
		"author_image": "https://img.example/ada.jpg",
		"review_rating": 5,
		"review_text": "Excellent service",
		"review_timestamp": 1717243200,
		"review_datetime_utc": "2024-06-01 12:00:00",
		"review_img_url": "https://img.example/photo1.jpg"
	}`)

	got, err := NormalizeReview(raw, providers.SourceKindOutscraper, "")
	if err != nil {
		t.Fatalf("NormalizeReview() error = %v", err)
	}

	if got.AuthorName != "Ada Lovelace" {
		t.Errorf("AuthorName = %q", got.AuthorName)
	}
	if got.AuthorURL != "https://maps.example/ada" {
		t.Errorf("AuthorURL = %q", got.AuthorURL)
	}
	if got.Rating != 5 {
		t.Errorf("Rating = %d", got.Rating)
	}
	if got.Time != 1717243200 {
		t.Errorf("Time = %d", got.Time)
	}
	if got.ProfilePhotoURL == nil || *got.ProfilePhotoURL != "https://img.example/ada.jpg" {
		t.Errorf("ProfilePhotoURL = %v", got.ProfilePhotoURL)
	}
	if len(got.Photos) != 1 || got.Photos[0] != "https://img.example/photo1.jpg" {
		t.Errorf("Photos = %v", got.Photos)
	}
	if got.ExternalID == nil || *got.ExternalID != "osr-42" {
		t.Errorf("ExternalID = %v", got.ExternalID)
	}
}

func TestNormalizeOutscraperReviewTimestampFallback(t *testing.T) {
	raw := json.RawMessage(`{
		"author_title": "Grace Hopper",
		"review_rating": 4,
		"review_datetime_utc": "2024-06-01 12:00:00"
	}`)

	got, err := NormalizeReview(raw, providers.SourceKindOutscraper, "")
	if err != nil {
		t.Fatalf("NormalizeReview() error = %v", err)
	}
	if got.Time != 1717243200 {
		t.Errorf("Time = %d, want 1717243200", got.Time)
	}
}

func TestNormalizeGoogleReview(t *testing.T) {
	raw := json.RawMessage(`{
		"author_name": "Grace Hopper",
		"author_url": "https://maps.example/grace",
		"profile_photo_url": "https://img.example/grace.jpg",
		"rating": 4,
		"text": "Very helpful",
		"time": 1717243200,
		"relative_time_description": "2 months ago",
		"photos": [
			"https://img.example/ready.jpg",
			{"url": "https://img.example/nested.jpg"},
			{"photo_reference": "REF123"}
		]
	}`)

	got, err := NormalizeReview(raw, providers.SourceKindGoogle, "secret-key")
	if err != nil {
		t.Fatalf("NormalizeReview() error = %v", err)
	}

	if got.AuthorName != "Grace Hopper" {
		t.Errorf("AuthorName = %q", got.AuthorName)
	}
	if got.RelativeTime != "2 months ago" {
		t.Errorf("RelativeTime = %q", got.RelativeTime)
	}
	if len(got.Photos) != 3 {
		t.Fatalf("Photos = %v, want 3 entries", got.Photos)
	}
	if got.Photos[0] != "https://img.example/ready.jpg" {
		t.Errorf("Photos[0] = %q", got.Photos[0])
	}
	if got.Photos[1] != "https://img.example/nested.jpg" {
		t.Errorf("Photos[1] = %q", got.Photos[1])
	}
	if !strings.HasPrefix(got.Photos[2], "https://maps.googleapis.com/maps/api/place/photo?") {
		t.Errorf("Photos[2] = %q, want a media URL", got.Photos[2])
	}
	if !strings.Contains(got.Photos[2], "photo_reference=REF123") || !strings.Contains(got.Photos[2], "key=secret-key") {
		t.Errorf("Photos[2] = %q, missing reference or key", got.Photos[2])
	}
}

func TestNormalizeGoogleReviewPhotoReferenceWithoutCredential(t *testing.T) {
	raw := json.RawMessage(`{
		"author_name": "Grace Hopper",
		"rating": 4,
		"time": 1717243200,
		"photos": [{"photo_reference": "REF123"}]
	}`)

	got, err := NormalizeReview(raw, providers.SourceKindGoogle, "")
	if err != nil {
		t.Fatalf("NormalizeReview() error = %v", err)
	}
	// An unresolvable reference is dropped rather than emitted half-built.
	if len(got.Photos) != 0 {
		t.Errorf("Photos = %v, want none", got.Photos)
	}
}

func TestNormalizeGoogleReviewPublishTimeFallback(t *testing.T) {
	raw := json.RawMessage(`{
		"author_name": "Grace Hopper",
		"rating": 4,
		"publishTime": "2024-06-01T12:00:00Z"
	}`)

	got, err := NormalizeReview(raw, providers.SourceKindMock, "")
	if err != nil {
		t.Fatalf("NormalizeReview() error = %v", err)
	}
	if got.Time != 1717243200 {
		t.Errorf("Time = %d, want 1717243200", got.Time)
	}
}

func TestNormalizeReviewErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind providers.SourceKind
	}{
		{
			name: "not an object",
			raw:  `[1,2,3]`,
			kind: providers.SourceKindGoogle,
		},
		{
			name: "missing author",
			raw:  `{"rating": 5, "time": 100}`,
			kind: providers.SourceKindGoogle,
		},
		{
			name: "missing rating",
			raw:  `{"author_name": "Ada", "time": 100}`,
			kind: providers.SourceKindGoogle,
		},
		{
			name: "missing timestamp",
			raw:  `{"author_name": "Ada", "rating": 5}`,
			kind: providers.SourceKindGoogle,
		},
		{
			name: "unparseable timestamp",
			raw:  `{"author_title": "Ada", "review_rating": 5, "review_datetime_utc": "yesterday"}`,
			kind: providers.SourceKindOutscraper,
		},
		{
			name: "unsupported kind",
			raw:  `{"author_name": "Ada", "rating": 5, "time": 100}`,
			kind: providers.SourceKind("yelp"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeReview(json.RawMessage(tt.raw), tt.kind, "")
			if err == nil {
				t.Fatal("NormalizeReview() error = nil, want provider error")
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeProvider) {
				t.Errorf("error type = %v, want provider", err)
			}
		})
	}
}

func TestNormalizeReviewRatingPassthrough(t *testing.T) {
	// Out-of-range ratings are stored as reported, not clamped.
	raw := json.RawMessage(`{"author_name": "Ada", "rating": 7, "time": 100}`)

	got, err := NormalizeReview(raw, providers.SourceKindGoogle, "")
	if err != nil {
		t.Fatalf("NormalizeReview() error = %v", err)
	}
	if got.Rating != 7 {
		t.Errorf("Rating = %d, want 7", got.Rating)
	}
}
