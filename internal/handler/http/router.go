package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/instruktori/tutorialstore/internal/service"
	"github.com/instruktori/tutorialstore/pkg/health"
	"github.com/instruktori/tutorialstore/pkg/middleware"
)

// RouterConfig carries the knobs the router needs beyond its dependencies.
type RouterConfig struct {
	JWTSecret      string
	RateLimitRPS   int
	RateLimitBurst int
}

// NewRouter creates a chi router with all catalog routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("catalog"))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	}

	// Operational endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	isAuth := middleware.IsAuth(cfg.JWTSecret)
	tutorialHandler := NewTutorialHandler(catalogService, logger)

	r.Route("/api/tutorials", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public catalog reads. Static segments are registered before the
		// {id} wildcard so "admin", "search", and friends never match as ids.
		r.Get("/", tutorialHandler.ListAll)
		r.Get("/search", tutorialHandler.Search)
		r.Get("/categories", tutorialHandler.ListCategories)
		r.Get("/slug/{slug}", tutorialHandler.GetBySlug)
		r.Get("/{id}", tutorialHandler.GetByID)

		// Authenticated review submission.
		r.Group(func(r chi.Router) {
			r.Use(isAuth)
			r.Post("/{id}/reviews", tutorialHandler.SubmitReview)
		})

		// Admin catalog management.
		r.Group(func(r chi.Router) {
			r.Use(isAuth, middleware.IsAdmin)

			r.Get("/admin", tutorialHandler.ListAdmin)
			r.Post("/", tutorialHandler.Create)
			r.Put("/{id}", tutorialHandler.Update)
			r.Delete("/{id}", tutorialHandler.Delete)
		})
	})

	return r
}
