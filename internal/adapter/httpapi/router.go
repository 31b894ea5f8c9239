package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/estate-manager/property-service/internal/adapter/httpapi/middleware"
	"github.com/estate-manager/property-service/internal/platform/logger"
)

// NewRouter wires the property endpoints under /api/v1. The fixed-path
// routes (stats, sold-stats, cleanup-sold) are registered before the {id}
// routes; chi resolves static segments first either way, keeping "stats"
// from being read as a property id.
func NewRouter(h *PropertyHandler, log logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Metrics)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization"},
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondMessage(w, http.StatusOK, "ok", nil)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/properties", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/stats", h.Stats)
		r.Get("/sold-stats", h.SoldStats)
		r.Post("/cleanup-sold", h.CleanupSold)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/sold", h.MarkSold)
			r.Post("/image", h.UploadImages)
			r.Post("/images", h.UploadImages)
		})
	})

	return r
}
