package services

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/adeyela/reviewvault/backend/internal/domain/entities"
	"github.com/adeyela/reviewvault/backend/internal/domain/providers"
	apperrors "github.com/adeyela/reviewvault/backend/pkg/errors"
)

const googlePhotoURL = "https://maps.googleapis.com/maps/api/place/photo"

// timestampLayouts are tried in order when a source reports review time as a
// string instead of unix seconds.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
}

// NormalizeReview converts one provider-shaped review payload into the
// canonical record. The mapping is selected by source kind, never by field
// sniffing. The credential is only used to build fetchable photo URLs for
// sources that hand back opaque photo references; it is not stored.
//
// Ratings are passed through exactly as the provider reported them.
func NormalizeReview(raw json.RawMessage, kind providers.SourceKind, credential string) (entities.Review, error) {
	payload := gjson.ParseBytes(raw)
	if !payload.IsObject() {
		return entities.Review{}, apperrors.NewProviderError("review payload is not an object", nil)
	}

	switch kind {
	case providers.SourceKindOutscraper:
		return normalizeOutscraperReview(payload)
	case providers.SourceKindGoogle, providers.SourceKindMock:
		return normalizeGoogleReview(payload, credential)
	default:
		return entities.Review{}, apperrors.NewProviderError(fmt.Sprintf("unsupported source kind %q", kind), nil)
	}
}

// normalizeOutscraperReview maps the flat reviews-v3 shape.
func normalizeOutscraperReview(payload gjson.Result) (entities.Review, error) {
	review := entities.Review{
		AuthorName:   payload.Get("author_title").String(),
		AuthorURL:    payload.Get("author_link").String(),
		Text:         payload.Get("review_text").String(),
		RelativeTime: payload.Get("review_datetime_utc").String(),
		Photos:       []string{},
	}

	if review.AuthorName == "" {
		return entities.Review{}, apperrors.NewProviderError("review is missing author name", nil)
	}

	rating := payload.Get("review_rating")
	if !rating.Exists() {
		return entities.Review{}, apperrors.NewProviderError("review is missing rating", nil)
	}
	review.Rating = int(rating.Int())

	ts, err := resolveTimestamp(payload.Get("review_timestamp"), payload.Get("review_datetime_utc"))
	if err != nil {
		return entities.Review{}, err
	}
	review.Time = ts

	if photo := payload.Get("author_image"); photo.Exists() && photo.String() != "" {
		value := photo.String()
		review.ProfilePhotoURL = &value
	}
	if img := payload.Get("review_img_url"); img.Exists() && img.String() != "" {
		review.Photos = append(review.Photos, img.String())
	}
	if id := payload.Get("review_id"); id.Exists() && id.String() != "" {
		value := id.String()
		review.ExternalID = &value
	}

	return review, nil
}

// normalizeGoogleReview maps the nested place-details shape. Opaque
// photo_reference entries are resolved into fetchable media URLs using the
// caller's credential; ready URLs pass through unchanged.
func normalizeGoogleReview(payload gjson.Result, credential string) (entities.Review, error) {
	review := entities.Review{
		AuthorName:   payload.Get("author_name").String(),
		AuthorURL:    payload.Get("author_url").String(),
		Text:         payload.Get("text").String(),
		RelativeTime: payload.Get("relative_time_description").String(),
		Photos:       []string{},
	}

	if review.AuthorName == "" {
		return entities.Review{}, apperrors.NewProviderError("review is missing author name", nil)
	}

	rating := payload.Get("rating")
	if !rating.Exists() {
		return entities.Review{}, apperrors.NewProviderError("review is missing rating", nil)
	}
	review.Rating = int(rating.Int())

	ts, err := resolveTimestamp(payload.Get("time"), payload.Get("publishTime"))
	if err != nil {
		return entities.Review{}, err
	}
	review.Time = ts

	if photo := payload.Get("profile_photo_url"); photo.Exists() && photo.String() != "" {
		value := photo.String()
		review.ProfilePhotoURL = &value
	}

	payload.Get("photos").ForEach(func(_, photo gjson.Result) bool {
		if resolved := resolvePhotoURL(photo, credential); resolved != "" {
			review.Photos = append(review.Photos, resolved)
		}
		return true
	})

	if id := payload.Get("review_id"); id.Exists() && id.String() != "" {
		value := id.String()
		review.ExternalID = &value
	}

	return review, nil
}

// resolveTimestamp derives unix seconds from a numeric field, falling back to
// an ISO-8601 string truncated to epoch seconds.
func resolveTimestamp(numeric, textual gjson.Result) (int64, error) {
	if numeric.Exists() {
		switch numeric.Type {
		case gjson.Number:
			return numeric.Int(), nil
		case gjson.String:
			if ts, err := parseTimestampString(numeric.String()); err == nil {
				return ts, nil
			}
		}
	}
	if textual.Exists() && textual.String() != "" {
		if ts, err := parseTimestampString(textual.String()); err == nil {
			return ts, nil
		}
	}
	return 0, apperrors.NewProviderError("review is missing a usable timestamp", nil)
}

func parseTimestampString(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.Unix(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized timestamp %q", value)
}

// resolvePhotoURL turns one photo entry into a directly fetchable URL. A
// bare string or a url field passes through; a photo_reference is turned
// into a media URL with the credential.
func resolvePhotoURL(photo gjson.Result, credential string) string {
	if photo.Type == gjson.String {
		return photo.String()
	}
	if ready := photo.Get("url"); ready.Exists() && ready.String() != "" {
		return ready.String()
	}
	reference := photo.Get("photo_reference").String()
	if reference == "" || credential == "" {
		return ""
	}
	query := url.Values{}
	query.Set("maxwidth", "800")
	query.Set("photo_reference", reference)
	query.Set("key", credential)
	return googlePhotoURL + "?" + query.Encode()
}
