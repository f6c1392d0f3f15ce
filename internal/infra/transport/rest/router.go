package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flowradar/flowradar/internal/domain/usecase"
	"github.com/flowradar/flowradar/internal/infra/metrics"
	"github.com/flowradar/flowradar/internal/infra/transport/rest/handlers"
	"github.com/flowradar/flowradar/internal/infra/transport/rest/middleware"
)

// NewRouter wires the analysis endpoints. gatherer serves /metrics;
// pass the same registry the metrics were registered on.
func NewRouter(service usecase.Service, m *metrics.Metrics, gatherer prometheus.Gatherer, log *slog.Logger) http.Handler {
	h := handlers.NewHandlers(service)

	r := chi.NewRouter()
	r.Use(middleware.Logging(log))
	r.Use(middleware.Metrics(m))

	r.Get("/health", h.GetHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/analysis", func(r chi.Router) {
		r.Post("/flow", h.PostAnalysisFlow)
		r.Post("/constraints", h.PostAnalysisConstraints)
		r.Post("/rootcause", h.PostAnalysisRootCause)
		r.Post("/forecast", h.PostAnalysisForecast)
		r.Post("/run", h.PostAnalysisRun)
		r.Post("/ownership", h.PostAnalysisOwnership)
	})

	r.Route("/constraints", func(r chi.Router) {
		r.Get("/history", h.GetConstraintHistory)
		r.Delete("/history", h.DeleteConstraintHistory)
		r.Post("/{id}/acknowledge", h.PostConstraintAcknowledge)
		r.Post("/{id}/resolve", h.PostConstraintResolve)
	})

	return r
}
