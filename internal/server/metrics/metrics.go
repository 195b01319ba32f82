// Package metrics holds the Prometheus collectors of the server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "milestonegate"

// Metrics is registered once per process; tests pass a fresh registry.
type Metrics struct {
	Transitions      *prometheus.CounterVec
	SecurityEvents   *prometheus.CounterVec
	RateLimited      *prometheus.CounterVec
	PreviewRenders   *prometheus.CounterVec
	OrphansDeleted   *prometheus.CounterVec
	EventsPublished  *prometheus.CounterVec
	GRPCDuration     *prometheus.HistogramVec
	HTTPDuration     *prometheus.HistogramVec
	CompensationRuns *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Milestone lifecycle transitions by event and result.",
		}, []string{"event", "result"}),
		SecurityEvents: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "security_events_total",
			Help:      "Suspicious uploads and refused access attempts.",
		}, []string{"kind"}),
		RateLimited: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests refused by the rate limiter.",
		}, []string{"operation"}),
		PreviewRenders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preview_renders_total",
			Help:      "Watermarked preview requests by outcome (hit, rendered, failed).",
		}, []string{"outcome"}),
		OrphansDeleted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphans_deleted_total",
			Help:      "Objects removed by the orphan sweeper.",
		}, []string{"bucket"}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events handed to the broker.",
		}, []string{"routing_key", "result"}),
		GRPCDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "grpc_request_duration_seconds",
			Help:      "gRPC unary call duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"method", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"method", "route", "status"}),
		CompensationRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compensations_total",
			Help:      "Saga compensations by workflow and result.",
		}, []string{"workflow", "result"}),
	}
}

func (m *Metrics) ObserveGRPC(method, code string, d time.Duration) {
	m.GRPCDuration.WithLabelValues(method, code).Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	m.HTTPDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}
