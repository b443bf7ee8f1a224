package search

import (
	"context"
	"fmt"
	"hash/fnv"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/adeyela/reviewvault/backend/internal/domain/entities"
	"github.com/adeyela/reviewvault/backend/internal/domain/repositories"
	tsclient "github.com/adeyela/reviewvault/backend/internal/infrastructure/clients/typesense"
)

const collectionName = "reviews"

// TypesenseAdapter implements review full-text search using Typesense.
// Documents are re-upserted per widget after each successful refresh.
type TypesenseAdapter struct {
	client *tsclient.Client
}

// Ensure TypesenseAdapter implements ReviewSearchRepository
var _ repositories.ReviewSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the reviews collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "widget_id", Type: "string", Facet: pointer.True()},
			{Name: "author_name", Type: "string"},
			{Name: "text", Type: "string"},
			{Name: "rating", Type: "int32", Facet: pointer.True()},
			{Name: "time", Type: "int64"},
		},
		DefaultSortingField: pointer.String("time"),
	}

	if _, err := a.client.Client().Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}
	return nil
}

// IndexWidget upserts every review of a widget's merged history.
func (a *TypesenseAdapter) IndexWidget(ctx context.Context, record *entities.WidgetRecord) error {
	for _, review := range record.Reviews {
		document := map[string]interface{}{
			"id":          reviewDocumentID(record.WidgetID, review),
			"widget_id":   record.WidgetID,
			"author_name": review.AuthorName,
			"text":        review.Text,
			"rating":      review.Rating,
			"time":        review.Time,
		}
		if _, err := a.client.Client().Collection(collectionName).Documents().Upsert(ctx, document); err != nil {
			return fmt.Errorf("failed to index review: %w", err)
		}
	}
	return nil
}

// DeleteWidget removes all indexed reviews of a widget.
func (a *TypesenseAdapter) DeleteWidget(ctx context.Context, widgetID string) error {
	filter := fmt.Sprintf("widget_id:=%s", widgetID)
	_, err := a.client.Client().Collection(collectionName).Documents().Delete(ctx, &api.DeleteDocumentsParams{
		FilterBy: pointer.String(filter),
	})
	if err != nil {
		return fmt.Errorf("failed to delete widget reviews from index: %w", err)
	}
	return nil
}

// Search queries indexed reviews by text and author.
func (a *TypesenseAdapter) Search(ctx context.Context, query repositories.ReviewSearchQuery) ([]repositories.ReviewSearchHit, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 20
	}

	params := &api.SearchCollectionParams{
		Q:       pointer.String(query.Query),
		QueryBy: pointer.String("text,author_name"),
		SortBy:  pointer.String("time:desc"),
		PerPage: pointer.Int(limit),
	}
	if query.WidgetID != "" {
		params.FilterBy = pointer.String(fmt.Sprintf("widget_id:=%s", query.WidgetID))
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search reviews: %w", err)
	}

	hits := []repositories.ReviewSearchHit{}
	if result.Hits == nil {
		return hits, nil
	}
	for _, hit := range *result.Hits {
		if hit.Document == nil {
			continue
		}
		doc := *hit.Document

		review := entities.Review{Photos: []string{}}
		if val, ok := doc["author_name"].(string); ok {
			review.AuthorName = val
		}
		if val, ok := doc["text"].(string); ok {
			review.Text = val
		}
		if val, ok := doc["rating"].(float64); ok {
			review.Rating = int(val)
		}
		if val, ok := doc["time"].(float64); ok {
			review.Time = int64(val)
		}

		widgetID, _ := doc["widget_id"].(string)
		hits = append(hits, repositories.ReviewSearchHit{
			WidgetID: widgetID,
			Review:   review,
		})
	}
	return hits, nil
}

// reviewDocumentID derives a stable per-review document id: the provider
// native id when present, otherwise a hash of the composite time+author key.
func reviewDocumentID(widgetID string, review entities.Review) string {
	key := ""
	if review.ExternalID != nil && *review.ExternalID != "" {
		key = *review.ExternalID
	} else {
		key = fmt.Sprintf("%d_%s", review.Time, review.AuthorName)
	}
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(key))
	return fmt.Sprintf("%s_%x", widgetID, hasher.Sum64())
}
