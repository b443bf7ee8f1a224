package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/adeyela/reviewvault/backend/internal/application/services"
	apperrors "github.com/adeyela/reviewvault/backend/pkg/errors"
)

// WidgetHandler serves the public widget document consumed by the embedded
// display snippet. It is read-only and unauthenticated by design: the
// snippet runs on arbitrary third-party sites.
type WidgetHandler struct {
	service         *services.WidgetService
	defaultWidgetID string
}

// NewWidgetHandler creates a new widget handler
func NewWidgetHandler(service *services.WidgetService, defaultWidgetID string) *WidgetHandler {
	if defaultWidgetID == "" {
		defaultWidgetID = "default-widget"
	}
	return &WidgetHandler{
		service:         service,
		defaultWidgetID: defaultWidgetID,
	}
}

// GetWidget handles GET /api/widget?id=
func (h *WidgetHandler) GetWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := r.URL.Query().Get("id")
	if widgetID == "" {
		widgetID = h.defaultWidgetID
	}

	record, err := h.service.Get(r.Context(), widgetID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			respondWithError(w, http.StatusNotFound, "Widget data not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
