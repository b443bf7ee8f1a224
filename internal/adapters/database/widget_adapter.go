package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/adeyela/reviewvault/backend/internal/domain/entities"
	"github.com/adeyela/reviewvault/backend/internal/domain/repositories"
	"github.com/adeyela/reviewvault/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/adeyela/reviewvault/backend/pkg/errors"
)

const widgetsTable = "widgets"

// WidgetAdapter implements widget persistence in Postgres. The review
// history lives in a single jsonb column so a write replaces the whole
// document, matching the keyed-document-store contract.
type WidgetAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewWidgetAdapter creates a new widget adapter.
func NewWidgetAdapter(client *postgres.Client) repositories.WidgetRepository {
	return &WidgetAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves one widget record.
func (a *WidgetAdapter) GetByID(ctx context.Context, widgetID string) (*entities.WidgetRecord, error) {
	query, args, err := a.db.From(widgetsTable).
		Select("widget_id", "place_id", "source_kind", "reviews", "rating", "user_ratings_total", "created_at", "last_updated").
		Where(goqu.C("widget_id").Eq(widgetID)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to build widget select query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	record, err := scanWidget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("widget %s not found", widgetID))
	}
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to read widget", err)
	}
	return record, nil
}

// Create inserts a new widget record.
func (a *WidgetAdapter) Create(ctx context.Context, record *entities.WidgetRecord) error {
	reviews, err := marshalReviews(record.Reviews)
	if err != nil {
		return err
	}

	query, args, err := a.db.Insert(widgetsTable).Rows(goqu.Record{
		"widget_id":          record.WidgetID,
		"place_id":           record.PlaceID,
		"source_kind":        record.SourceKind,
		"reviews":            reviews,
		"rating":             record.Rating,
		"user_ratings_total": record.UserRatingsTotal,
		"created_at":         record.CreatedAt,
		"last_updated":       record.LastUpdated,
	}).ToSQL()
	if err != nil {
		return apperrors.NewPersistenceError("failed to build widget insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewPersistenceError("failed to create widget", err)
	}
	return nil
}

// Put replaces the stored record wholesale, creating it when absent.
func (a *WidgetAdapter) Put(ctx context.Context, record *entities.WidgetRecord) error {
	reviews, err := marshalReviews(record.Reviews)
	if err != nil {
		return err
	}

	query, args, err := a.db.Insert(widgetsTable).Rows(goqu.Record{
		"widget_id":          record.WidgetID,
		"place_id":           record.PlaceID,
		"source_kind":        record.SourceKind,
		"reviews":            reviews,
		"rating":             record.Rating,
		"user_ratings_total": record.UserRatingsTotal,
		"created_at":         record.CreatedAt,
		"last_updated":       record.LastUpdated,
	}).OnConflict(goqu.DoUpdate("widget_id", goqu.Record{
		"place_id":           record.PlaceID,
		"source_kind":        record.SourceKind,
		"reviews":            reviews,
		"rating":             record.Rating,
		"user_ratings_total": record.UserRatingsTotal,
		"last_updated":       record.LastUpdated,
	})).ToSQL()
	if err != nil {
		return apperrors.NewPersistenceError("failed to build widget upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewPersistenceError("failed to write widget", err)
	}
	return nil
}

// Delete removes a widget record.
func (a *WidgetAdapter) Delete(ctx context.Context, widgetID string) error {
	query, args, err := a.db.Delete(widgetsTable).
		Where(goqu.C("widget_id").Eq(widgetID)).
		ToSQL()
	if err != nil {
		return apperrors.NewPersistenceError("failed to build widget delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewPersistenceError("failed to delete widget", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("widget %s not found", widgetID))
	}
	return nil
}

// List returns all widget records, review histories included.
func (a *WidgetAdapter) List(ctx context.Context) ([]*entities.WidgetRecord, error) {
	query, args, err := a.db.From(widgetsTable).
		Select("widget_id", "place_id", "source_kind", "reviews", "rating", "user_ratings_total", "created_at", "last_updated").
		Order(goqu.C("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to build widget list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to list widgets", err)
	}
	defer rows.Close()

	records := []*entities.WidgetRecord{}
	for rows.Next() {
		record, err := scanWidget(rows)
		if err != nil {
			return nil, apperrors.NewPersistenceError("failed to scan widget row", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("failed to iterate widget rows", err)
	}
	return records, nil
}

// ListSummaries returns the lightweight listing without review documents.
func (a *WidgetAdapter) ListSummaries(ctx context.Context) ([]*entities.WidgetSummary, error) {
	query, args, err := a.db.From(widgetsTable).
		Select(
			"widget_id", "place_id", "source_kind", "rating", "last_updated",
			goqu.L("jsonb_array_length(reviews)").As("review_count"),
		).
		Order(goqu.C("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to build widget summary query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to list widget summaries", err)
	}
	defer rows.Close()

	summaries := []*entities.WidgetSummary{}
	for rows.Next() {
		summary := &entities.WidgetSummary{}
		if err := rows.Scan(
			&summary.WidgetID,
			&summary.PlaceID,
			&summary.SourceKind,
			&summary.Rating,
			&summary.LastUpdated,
			&summary.ReviewCount,
		); err != nil {
			return nil, apperrors.NewPersistenceError("failed to scan widget summary row", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewPersistenceError("failed to iterate widget summary rows", err)
	}
	return summaries, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWidget(row rowScanner) (*entities.WidgetRecord, error) {
	record := &entities.WidgetRecord{}
	var reviews []byte
	if err := row.Scan(
		&record.WidgetID,
		&record.PlaceID,
		&record.SourceKind,
		&reviews,
		&record.Rating,
		&record.UserRatingsTotal,
		&record.CreatedAt,
		&record.LastUpdated,
	); err != nil {
		return nil, err
	}
	if len(reviews) > 0 {
		if err := json.Unmarshal(reviews, &record.Reviews); err != nil {
			return nil, err
		}
	}
	if record.Reviews == nil {
		record.Reviews = []entities.Review{}
	}
	return record, nil
}

func marshalReviews(reviews []entities.Review) ([]byte, error) {
	if reviews == nil {
		reviews = []entities.Review{}
	}
	data, err := json.Marshal(reviews)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to encode review document", err)
	}
	return data, nil
}
