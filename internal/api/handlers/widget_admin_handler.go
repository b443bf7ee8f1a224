package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/adeyela/reviewvault/backend/internal/application/services"
	apperrors "github.com/adeyela/reviewvault/backend/pkg/errors"
)

// WidgetAdminHandler covers widget registration and removal.
type WidgetAdminHandler struct {
	service *services.WidgetService
}

// NewWidgetAdminHandler creates a new widget admin handler
func NewWidgetAdminHandler(service *services.WidgetService) *WidgetAdminHandler {
	return &WidgetAdminHandler{service: service}
}

type registerWidgetRequest struct {
	WidgetID   string `json:"widget_id"`
	PlaceID    string `json:"place_id"`
	SourceKind string `json:"source_kind"`
}

// RegisterWidget handles POST /api/widgets
func (h *WidgetAdminHandler) RegisterWidget(w http.ResponseWriter, r *http.Request) {
	var payload registerWidgetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	record, err := h.service.Register(r.Context(), payload.WidgetID, payload.PlaceID, payload.SourceKind)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeValidation {
			respondWithError(w, http.StatusBadRequest, appErr.Message)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to register widget")
		return
	}

	respondWithJSON(w, http.StatusCreated, record)
}

// ListWidgets handles GET /api/widgets
func (h *WidgetAdminHandler) ListWidgets(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.List(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "failed to list widgets")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"widgets": summaries,
		"count":   len(summaries),
	})
}

// DeleteWidget handles DELETE /api/widgets/{id}
func (h *WidgetAdminHandler) DeleteWidget(w http.ResponseWriter, r *http.Request) {
	widgetID := r.PathValue("id")
	if widgetID == "" {
		respondWithError(w, http.StatusBadRequest, "widget ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), widgetID); err != nil {
		if apperrors.IsNotFound(err) {
			respondWithError(w, http.StatusNotFound, "widget not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, "failed to delete widget")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
