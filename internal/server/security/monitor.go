// Package security reports suspicious uploads and refused access attempts.
// Reports never block or fail the operation that raised them.
package security

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/milestonegate/internal/logging"
)

type Kind string

const (
	KindSuspiciousUpload     Kind = "suspicious_upload"
	KindUnauthorizedDownload Kind = "unauthorized_download"
	KindUnauthorizedAction   Kind = "unauthorized_action"
	KindRateLimited          Kind = "rate_limited"
)

// Event describes what was attempted and by whom.
type Event struct {
	Kind        Kind
	ActorID     string
	MilestoneID string
	Operation   string
	Detail      string
}

type Monitor interface {
	Report(ctx context.Context, e Event)
}

// LogMonitor writes a warning per event and counts events by kind.
type LogMonitor struct {
	log     logging.Logger
	counter *prometheus.CounterVec
}

// NewLogMonitor builds a monitor. counter may be nil.
func NewLogMonitor(log logging.Logger, counter *prometheus.CounterVec) *LogMonitor {
	return &LogMonitor{log: log.With("component", "security"), counter: counter}
}

func (m *LogMonitor) Report(ctx context.Context, e Event) {
	m.log.Warn(ctx, "security event",
		"kind", string(e.Kind),
		"actor_id", e.ActorID,
		"milestone_id", e.MilestoneID,
		"operation", e.Operation,
		"detail", e.Detail,
	)
	if m.counter != nil {
		m.counter.WithLabelValues(string(e.Kind)).Inc()
	}
}

// NopMonitor drops every event.
type NopMonitor struct{}

func (NopMonitor) Report(context.Context, Event) {}
