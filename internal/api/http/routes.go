package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates the local status router: panel state, backend health and
// the Prometheus metrics endpoint.
func NewRouter(health HealthProvider, panels PanelProvider, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	statusHandler := NewStatusHandler(health, panels, logger)

	r.Get("/health", statusHandler.Health)

	r.Route("/panels", func(r chi.Router) {
		r.Get("/", statusHandler.ListPanels)
		r.Get("/{platform}", statusHandler.GetPanel)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	return r
}
