package routes

import (
	"net/http"

	"github.com/adeyela/reviewvault/backend/internal/api/handlers"
	"github.com/adeyela/reviewvault/backend/internal/api/middleware"
	"github.com/adeyela/reviewvault/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	widgetHandler       *handlers.WidgetHandler
	widgetAdminHandler  *handlers.WidgetAdminHandler
	refreshHandler      *handlers.RefreshHandler
	reviewSearchHandler *handlers.ReviewSearchHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	widgetHandler *handlers.WidgetHandler,
	widgetAdminHandler *handlers.WidgetAdminHandler,
	refreshHandler *handlers.RefreshHandler,
	reviewSearchHandler *handlers.ReviewSearchHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		widgetHandler:       widgetHandler,
		widgetAdminHandler:  widgetAdminHandler,
		refreshHandler:      refreshHandler,
		reviewSearchHandler: reviewSearchHandler,

		metrics: metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Public widget endpoint (read by the embedded snippet)
	r.mux.HandleFunc("GET /api/widget", r.widgetHandler.GetWidget)

	// Refresh trigger (GET alias kept for external cron services)
	r.mux.HandleFunc("POST /api/cron/refresh", r.refreshHandler.TriggerRefresh)
	r.mux.HandleFunc("GET /api/cron/refresh", r.refreshHandler.TriggerRefresh)

	// Widget administration
	r.mux.HandleFunc("POST /api/widgets", r.widgetAdminHandler.RegisterWidget)
	r.mux.HandleFunc("GET /api/widgets", r.widgetAdminHandler.ListWidgets)
	r.mux.HandleFunc("DELETE /api/widgets/{id}", r.widgetAdminHandler.DeleteWidget)

	// Review search
	r.mux.HandleFunc("GET /api/reviews/search", r.reviewSearchHandler.SearchReviews)

	// Apply middleware: CORS first so preflight short-circuits early
	var handler http.Handler = r.mux
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
