// Package events publishes milestone lifecycle events after a mutation has
// committed. Publishing is best effort: the committed change stands even
// when the broker is unreachable.
package events

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/milestonegate/internal/logging"
)

// Routing keys on the topic exchange.
const (
	PaymentSubmitted    = "milestone.payment_submitted"
	PaymentApproved     = "milestone.approved"
	PaymentRejected     = "milestone.rejected"
	DeliverableUploaded = "milestone.deliverable_uploaded"
	WatermarkUpdated    = "milestone.watermark_updated"
)

// Event is the JSON body of a published message.
type Event struct {
	Type        string    `json:"type"`
	MilestoneID string    `json:"milestone_id"`
	ActorID     string    `json:"actor_id"`
	Status      string    `json:"status,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// BestEffort logs and counts publish failures instead of returning them.
type BestEffort struct {
	pub     Publisher
	log     logging.Logger
	counter *prometheus.CounterVec
}

// NewBestEffort wraps pub. counter may be nil.
func NewBestEffort(pub Publisher, log logging.Logger, counter *prometheus.CounterVec) *BestEffort {
	return &BestEffort{pub: pub, log: log, counter: counter}
}

func (b *BestEffort) Emit(ctx context.Context, e Event) {
	result := "ok"
	if err := b.pub.Publish(ctx, e); err != nil {
		result = "failed"
		b.log.Warn(ctx, "event publish failed", "type", e.Type, "milestone_id", e.MilestoneID, "error", err)
	}
	if b.counter != nil {
		b.counter.WithLabelValues(e.Type, result).Inc()
	}
}

// Nop discards events; used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
