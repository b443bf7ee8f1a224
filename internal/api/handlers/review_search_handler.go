package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/adeyela/reviewvault/backend/internal/application/services"
	"github.com/adeyela/reviewvault/backend/internal/domain/repositories"
	apperrors "github.com/adeyela/reviewvault/backend/pkg/errors"
)

// ReviewSearchHandler serves full-text search over indexed reviews.
type ReviewSearchHandler struct {
	service *services.WidgetService
}

// NewReviewSearchHandler creates a new review search handler
func NewReviewSearchHandler(service *services.WidgetService) *ReviewSearchHandler {
	return &ReviewSearchHandler{service: service}
}

// SearchReviews handles GET /api/reviews/search?q=&widget=&limit=
func (h *ReviewSearchHandler) SearchReviews(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	hits, err := h.service.SearchReviews(r.Context(), repositories.ReviewSearchQuery{
		Query:    q,
		WidgetID: strings.TrimSpace(r.URL.Query().Get("widget")),
		Limit:    limit,
	})
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeConfiguration) {
			respondWithError(w, http.StatusServiceUnavailable, "review search is not configured")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to search reviews")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"hits":  hits,
		"count": len(hits),
	})
}
