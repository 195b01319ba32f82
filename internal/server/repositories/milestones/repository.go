// Package milestones persists milestone rows. Status changes are
// compare-and-swap updates guarded by the expected current status.
package milestones

import (
	"context"

	"github.com/dmitrijs2005/milestonegate/internal/server/models"
)

// ObjectKind selects which stored reference a key lookup inspects.
type ObjectKind string

const (
	KindPaymentProof ObjectKind = "payment_proof"
	KindDeliverable  ObjectKind = "deliverable"
)

// DeliverableUpdate replaces the deliverable of a milestone. Watermark is
// written only when SetWatermark is true.
type DeliverableUpdate struct {
	Deliverable  models.Deliverable
	SetWatermark bool
	Watermark    *string
}

// Replaced carries the references a mutation overwrote, so the caller can
// clean up the superseded object after commit.
type Replaced struct {
	URL string
	Key string
}

type Repository interface {
	Get(ctx context.Context, id string) (*models.Milestone, error)
	// SubmitProof records a proof and moves expected -> payment_submitted.
	SubmitProof(ctx context.Context, id string, expected models.Status, proof models.ObjectRef) (Replaced, error)
	// SetStatus moves expected -> next. Zero rows yields ErrConflict or ErrNotFound.
	SetStatus(ctx context.Context, id string, expected, next models.Status) error
	ReplaceDeliverable(ctx context.Context, id string, u DeliverableUpdate) (Replaced, error)
	SetWatermark(ctx context.Context, id string, text *string) error
	// KeyReferenced reports whether any row still points at key.
	KeyReferenced(ctx context.Context, kind ObjectKind, key string) (bool, error)
}
