package entities

import "time"

// Outcome statuses for a single widget within a refresh run.
const (
	OutcomeSkipped = "skipped"
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// WidgetOutcome is one per-widget entry in a refresh run report.
type WidgetOutcome struct {
	WidgetID    string  `json:"id"`
	Status      string  `json:"status"`
	PlaceID     string  `json:"placeId,omitempty"`
	Reason      string  `json:"reason,omitempty"`
	Error       string  `json:"error,omitempty"`
	Rating      float64 `json:"rating,omitempty"`
	ReviewCount int     `json:"reviewCount,omitempty"`
	NewAdded    int     `json:"newAdded"`
}

// RunReport aggregates the outcomes of one refresh run.
type RunReport struct {
	Success    bool            `json:"success"`
	Processed  int             `json:"processed"`
	Results    []WidgetOutcome `json:"results"`
	StartedAt  time.Time       `json:"startedAt"`
	FinishedAt time.Time       `json:"finishedAt"`
}
