package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mirindaq/EcomStore-sub002/internal/service"
	"github.com/mirindaq/EcomStore-sub002/pkg/health"
	"github.com/mirindaq/EcomStore-sub002/pkg/middleware"
)

// NewRouter creates a chi router with all catalog indexer routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	searchService *service.SearchService,
	indexerService *service.IndexerService,
	healthHandler *health.Handler,
	corsCfg middleware.CORSConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("catalog_indexer"))
	r.Use(Identity)

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	productHandler := NewProductHandler(catalogService, logger)
	searchHandler := NewSearchHandler(searchService, logger)
	adminHandler := NewAdminHandler(indexerService, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", searchHandler.Search)

		r.Route("/products", func(r chi.Router) {
			r.Get("/{id}", productHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(ContentTypeJSON)
				r.Post("/", productHandler.Create)
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireStaff)
				r.Delete("/{id}", productHandler.Delete)
			})
		})

		// Index maintenance is staff-only.
		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireStaff)
			r.Post("/reindex", adminHandler.Reindex)
			r.Post("/index/{id}", adminHandler.IndexProduct)
			r.Delete("/documents/{id}", adminHandler.DeleteDocument)
		})
	})

	return r
}
