package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the engine's Prometheus collectors.
type Metrics struct {
	AnalysisRuns        *prometheus.CounterVec
	ConstraintsDetected *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysisRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowradar",
			Name:      "analysis_runs_total",
			Help:      "Analysis invocations by kind.",
		}, []string{"kind"}),
		ConstraintsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "flowradar",
			Name:      "constraints_detected_total",
			Help:      "Constraints detected by severity.",
		}, []string{"severity"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "flowradar",
			Name:      "http_request_duration_seconds",
			Help:      "REST request duration by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}
	reg.MustRegister(m.AnalysisRuns, m.ConstraintsDetected, m.HTTPDuration)
	return m
}
