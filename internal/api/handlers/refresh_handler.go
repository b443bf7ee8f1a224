package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/adeyela/reviewvault/backend/internal/application/services"
	"github.com/adeyela/reviewvault/backend/internal/infrastructure/observability"
	apperrors "github.com/adeyela/reviewvault/backend/pkg/errors"
)

// RefreshHandler exposes the trigger surface for the review refresh run. It
// takes no request body and is safe to call repeatedly: the merge is
// idempotent, and an optional Idempotency-Key header additionally collapses
// duplicate schedule fires.
type RefreshHandler struct {
	service        *services.RefreshService
	redisClient    *redislib.Client
	idempotencyTTL time.Duration
}

// NewRefreshHandler creates a new refresh handler. redisClient may be nil;
// the idempotency guard is then disabled.
func NewRefreshHandler(service *services.RefreshService, redisClient *redislib.Client, idempotencyTTL time.Duration) *RefreshHandler {
	if idempotencyTTL <= 0 {
		idempotencyTTL = time.Hour
	}
	return &RefreshHandler{
		service:        service,
		redisClient:    redisClient,
		idempotencyTTL: idempotencyTTL,
	}
}

// TriggerRefresh handles POST /api/cron/refresh (and its GET alias for
// external cron services).
func (h *RefreshHandler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		respondWithError(w, http.StatusServiceUnavailable, "refresh service not configured")
		return
	}

	if duplicate, key := h.isDuplicate(r.Context(), r); duplicate {
		respondWithJSON(w, http.StatusOK, map[string]string{
			"status":          "duplicate",
			"idempotency_key": key,
		})
		return
	}

	report, err := h.service.Run(r.Context())
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeConfiguration) {
			respondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, "refresh run failed")
		return
	}

	// Per-widget errors are part of the report, not an HTTP failure.
	respondWithJSON(w, http.StatusOK, report)
}

func (h *RefreshHandler) isDuplicate(ctx context.Context, r *http.Request) (bool, string) {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		key = strings.TrimSpace(r.Header.Get("X-Idempotency-Key"))
	}
	if key == "" || h.redisClient == nil {
		return false, ""
	}

	redisKey := "refresh_idem:" + key
	ok, err := h.redisClient.SetNX(ctx, redisKey, time.Now().UTC().Format(time.RFC3339Nano), h.idempotencyTTL).Result()
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Msg("idempotency check failed")
		return false, key
	}
	return !ok, key
}
