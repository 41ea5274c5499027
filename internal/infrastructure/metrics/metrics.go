package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	generationRuns *prometheus.CounterVec
	candidates     *prometheus.CounterVec
	transfers      *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bookswap",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "bookswap",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "path"},
		),
		generationRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bookswap",
				Subsystem: "matching",
				Name:      "generation_runs_total",
				Help:      "Match generation runs by result.",
			},
			[]string{"result"},
		),
		candidates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bookswap",
				Subsystem: "matching",
				Name:      "matches_generated_total",
				Help:      "Persisted matches by kind.",
			},
			[]string{"kind"},
		),
		transfers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "bookswap",
				Subsystem: "matching",
				Name:      "transfers_total",
				Help:      "Item scans at exchange time by outcome.",
			},
			[]string{"outcome"},
		),
	}

	m.Registry.MustRegister(m.httpRequests, m.httpDuration, m.generationRuns, m.candidates, m.transfers)
	return m
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordGeneration(result string, userMatches, standMatches int) {
	m.generationRuns.WithLabelValues(result).Inc()
	if userMatches > 0 {
		m.candidates.WithLabelValues("user-match").Add(float64(userMatches))
	}
	if standMatches > 0 {
		m.candidates.WithLabelValues("stand-match").Add(float64(standMatches))
	}
}

func (m *Metrics) RecordTransfer(outcome string) {
	m.transfers.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
