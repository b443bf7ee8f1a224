package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/adeyela/reviewvault/backend/internal/domain/entities"
	"github.com/adeyela/reviewvault/backend/internal/domain/providers"
)

// IdentityKey computes the deduplication key for a review. A provider-native
// id wins when present; otherwise the key falls back to time plus the exact
// author name. Two reviews by the same author in the same second collide
// under the fallback; that is an accepted limitation of sources without
// native ids.
func IdentityKey(review entities.Review) string {
	if review.ExternalID != nil && *review.ExternalID != "" {
		return *review.ExternalID
	}
	return fmt.Sprintf("%d_%s", review.Time, review.AuthorName)
}

// MergeReviews combines the persisted collection with a freshly fetched
// batch. Existing entries are never dropped, reordered destructively, or
// overwritten; an incoming review is accepted only the first time its
// identity key is seen, which also collapses duplicates within the batch.
// The result is sorted by time descending with a stable sort, so equal
// timestamps keep existing-before-new and otherwise preserve input order.
//
// Re-applying the same batch is a no-op: merge(merge(E,B), B) == merge(E,B).
func MergeReviews(existing, incoming []entities.Review) ([]entities.Review, int) {
	seen := make(map[string]struct{}, len(existing))
	for _, review := range existing {
		seen[IdentityKey(review)] = struct{}{}
	}

	merged := make([]entities.Review, 0, len(existing)+len(incoming))
	merged = append(merged, existing...)

	added := 0
	for _, review := range incoming {
		key := IdentityKey(review)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		merged = append(merged, review)
		added++
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Time > merged[j].Time
	})

	return merged, added
}

// BuildWidgetRecord packages the post-merge persisted document. The provider
// summary wins for the aggregate fields when it carried them; an upstream
// call that omitted rating or total keeps the previously stored value so a
// hiccup never erases a known aggregate. LastUpdated is stamped on every
// call, merged reviews or not, to record that the widget was checked.
func BuildWidgetRecord(old *entities.WidgetRecord, summary providers.SourceSummary, merged []entities.Review, now time.Time) *entities.WidgetRecord {
	record := &entities.WidgetRecord{
		WidgetID:         old.WidgetID,
		PlaceID:          old.PlaceID,
		SourceKind:       old.SourceKind,
		Reviews:          merged,
		Rating:           old.Rating,
		UserRatingsTotal: old.UserRatingsTotal,
		CreatedAt:        old.CreatedAt,
		LastUpdated:      now,
	}
	if summary.Rating != 0 {
		record.Rating = summary.Rating
	}
	if summary.Total != 0 {
		record.UserRatingsTotal = summary.Total
	}
	return record
}
