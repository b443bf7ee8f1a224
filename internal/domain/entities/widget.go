package entities

import "time"

// WidgetRecord is the persisted document for one review widget. The reviews
// slice is append-only across refresh runs and kept sorted by Time descending.
type WidgetRecord struct {
	WidgetID         string    `json:"widget_id" db:"widget_id"`
	PlaceID          string    `json:"place_id" db:"place_id"`
	SourceKind       string    `json:"source_kind,omitempty" db:"source_kind"`
	Reviews          []Review  `json:"reviews"`
	Rating           float64   `json:"rating" db:"rating"`
	UserRatingsTotal int       `json:"user_ratings_total" db:"user_ratings_total"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	LastUpdated      time.Time `json:"lastUpdated" db:"last_updated"`
}

// WidgetSummary is the lightweight listing shape for the admin surface.
type WidgetSummary struct {
	WidgetID    string    `json:"widget_id" db:"widget_id"`
	PlaceID     string    `json:"place_id" db:"place_id"`
	SourceKind  string    `json:"source_kind,omitempty" db:"source_kind"`
	Rating      float64   `json:"rating" db:"rating"`
	ReviewCount int       `json:"review_count" db:"review_count"`
	LastUpdated time.Time `json:"lastUpdated" db:"last_updated"`
}
