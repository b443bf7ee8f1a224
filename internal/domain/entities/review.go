package entities

// Review is the provider-agnostic review record stored per widget.
// Time is the single ordering field (unix seconds); RelativeTime is
// display-only and never drives logic.
type Review struct {
	AuthorName      string   `json:"author_name"`
	AuthorURL       string   `json:"author_url,omitempty"`
	ProfilePhotoURL *string  `json:"profile_photo_url"`
	Rating          int      `json:"rating"`
	Text            string   `json:"text"`
	Time            int64    `json:"time"`
	RelativeTime    string   `json:"relative_time_description,omitempty"`
	Photos          []string `json:"photos"`
	ExternalID      *string  `json:"external_id,omitempty"`
}
