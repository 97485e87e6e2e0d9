package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orcaposte"

// Metrics owns a private registry so tests can create as many instances as they need.
type Metrics struct {
	registry             *prometheus.Registry
	httpRequests         *prometheus.CounterVec
	httpDuration         *prometheus.HistogramVec
	consolidationSeconds prometheus.Histogram
	consolidationLines   prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route template, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		consolidationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "consolidation_duration_seconds",
			Help:      "Time spent consolidating the materials of one budget.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		consolidationLines: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "consolidation_lines",
			Help:      "Number of distinct materials in a consolidated budget.",
			Buckets:   []float64{0, 5, 10, 25, 50, 100, 250, 500},
		}),
	}
}

func (m *Metrics) ObserveRequest(route, method string, code int, duration time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

func (m *Metrics) ObserveConsolidation(duration time.Duration, lines int) {
	m.consolidationSeconds.Observe(duration.Seconds())
	m.consolidationLines.Observe(float64(lines))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
