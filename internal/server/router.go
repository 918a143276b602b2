// Package server exposes the scoring engine as a JSON API.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dshills/medscore/internal/dosing"
	"github.com/dshills/medscore/internal/engine"
)

// NewRouter returns the API handler.
func NewRouter(e *engine.Engine, d *dosing.Calculator, m *Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))

	scales := NewScalesHandler(e, m, logger)
	meds := NewMedicationsHandler(d, m, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(JSONBodyLimit(maxBodyBytes))

		r.Get("/scales", scales.List)
		r.Get("/scales/{scale}", scales.Get)
		r.Post("/scales/{scale}/evaluate", scales.Evaluate)
		r.Post("/scales/{scale}/check", scales.Check)
		r.Post("/evaluate", scales.Batch)

		r.Get("/medications", meds.List)
		r.Get("/medications/{medication}", meds.Get)
		r.Post("/medications/{medication}/dose", meds.Dose)
	})

	return r
}

// NewMetricsRouter serves liveness and Prometheus metrics from g.
func NewMetricsRouter(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return r
}
