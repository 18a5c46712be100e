package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mediafolio/catalog-backend/api/controllers"
	"github.com/mediafolio/catalog-backend/api/middleware"
	"github.com/mediafolio/catalog-backend/pkg/config"
	"github.com/mediafolio/catalog-backend/pkg/logger"
)

// NewRouter assembles the HTTP surface: health probes, metrics, and the
// catalog API under /api/v1.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	deps map[string]controllers.Pinger,
	svc controllers.CatalogService,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/images", func(r chi.Router) {
			r.Get("/", controllers.ListImages(svc, cfg.Catalog, logg))
			r.Post("/", controllers.CreateImages(svc, logg))
			r.Get("/top", controllers.TopViewedImages(svc, cfg.Catalog, logg))
			r.Get("/{publicID}", controllers.GetImage(svc, logg))
			r.Patch("/{publicID}", controllers.UpdateImage(svc, logg))
			r.Delete("/{publicID}", controllers.DeleteImage(svc, logg))
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.ListCategories(svc, cfg.Catalog, logg))
			r.Get("/{categoryID}/images", controllers.CategoryImages(svc, cfg.Catalog, logg))
			r.Patch("/{categoryID}", controllers.RenameCategory(svc, logg))
			r.Delete("/{categoryID}", controllers.DeleteCategory(svc, logg))
		})

		r.Get("/search", controllers.SearchImages(svc, cfg.Catalog, logg))
		r.Get("/suggestions", controllers.Suggestions(svc, logg))
		r.Get("/export", controllers.Export(svc, logg))
	})

	return r
}
