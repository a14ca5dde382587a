package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the server. Each instance owns
// its own registry so tests and embedded servers never collide.
type Metrics struct {
	Registry *prometheus.Registry

	RequestsInFlight prometheus.Gauge
	RequestDuration  *prometheus.HistogramVec
	Operations       *prometheus.CounterVec
	SchemaReloads    prometheus.Counter
	SchemaTypes      prometheus.Gauge
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		RequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "jsoning",
			Name:      "requests_in_flight",
			Help:      "Number of requests currently being processed",
		}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jsoning",
			Name:      "request_duration_seconds",
			Help:      "Request duration in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"method", "route", "status"}),
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jsoning",
			Name:      "operations_total",
			Help:      "Generate and reconstruct operations by type and outcome",
		}, []string{"operation", "type", "outcome"}),
		SchemaReloads: f.NewCounter(prometheus.CounterOpts{
			Namespace: "jsoning",
			Name:      "schema_reloads_total",
			Help:      "Successful schema reloads",
		}),
		SchemaTypes: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "jsoning",
			Name:      "schema_types",
			Help:      "Number of types in the active schema",
		}),
	}
}

// statusLabel returns a string label for the status code.
func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "other"
	}
}
