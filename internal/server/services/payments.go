package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/server/events"
	"github.com/dmitrijs2005/milestonegate/internal/server/lifecycle"
	"github.com/dmitrijs2005/milestonegate/internal/server/models"
	"github.com/dmitrijs2005/milestonegate/internal/server/repositories/milestones"
	"github.com/dmitrijs2005/milestonegate/internal/server/security"
)

const (
	opSubmitProof = "submit_proof"
	opReview      = "review_payment_proof"
	opProofURL    = "payment_proof_url"
)

// PaymentService runs the payment proof workflow: client upload, record
// update and the owner's review.
type PaymentService struct {
	deps Deps
}

func NewPaymentService(deps Deps) *PaymentService {
	return &PaymentService{deps: deps.withDefaults()}
}

// SubmitProof validates file, uploads it to the proofs bucket and moves the
// milestone to payment_submitted. A failed record update deletes the upload.
// A proof it replaces is deleted after the update commits.
func (s *PaymentService) SubmitProof(ctx context.Context, milestoneID string, actor models.Actor, file models.Upload) (*models.Milestone, error) {
	d := s.deps
	log := d.Logger.With("milestone_id", milestoneID, "actor_id", actor.ID, "operation", opSubmitProof)

	if err := d.checkUpload(ctx, opSubmitProof, milestoneID, actor, file); err != nil {
		log.Warn(ctx, "proof rejected", "step", "validate", "error", err)
		return nil, err
	}

	repo := d.milestones()
	m, err := repo.Get(ctx, milestoneID)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.Apply(m, lifecycle.EventSubmitProof, actor)
	if err != nil {
		d.Metrics.Transitions.WithLabelValues(string(lifecycle.EventSubmitProof), "refused").Inc()
		if !errors.Is(err, lifecycle.ErrIllegalTransition) {
			d.reportRefused(ctx, security.KindUnauthorizedAction, opSubmitProof, actor, milestoneID, err)
		}
		return nil, err
	}

	key := proofKey(m.ID, d.Now(), file.Name)
	ref := models.ObjectRef{
		Bucket: d.Buckets.Proofs,
		Key:    key,
		URL:    d.Store.ObjectURL(d.Buckets.Proofs, key),
	}

	expected := m.Status
	var old milestones.Replaced
	err = d.uploadThenRecord(ctx, opSubmitProof, ref, file, func(ctx context.Context) (err error) {
		old, err = repo.SubmitProof(ctx, m.ID, expected, ref)
		return err
	})
	if err != nil {
		d.Metrics.Transitions.WithLabelValues(string(lifecycle.EventSubmitProof), "failed").Inc()
		return nil, err
	}
	d.deleteSuperseded(ctx, d.Buckets.Proofs, old, ref.Key)

	m.Status = next
	m.PaymentProofURL = ref.URL
	m.PaymentProofKey = ref.Key
	m.UpdatedAt = d.Now()

	d.Metrics.Transitions.WithLabelValues(string(lifecycle.EventSubmitProof), "ok").Inc()
	log.Info(ctx, "payment proof submitted", "key", ref.Key, "from", string(expected))
	d.emit(ctx, events.PaymentSubmitted, m, actor)
	return m, nil
}

// Review applies the owner's decision to a submitted proof. The status is
// swapped only if it is still payment_submitted; a concurrent review yields
// common.ErrConflict.
func (s *PaymentService) Review(ctx context.Context, milestoneID string, actor models.Actor, decision lifecycle.Decision) (*models.Milestone, error) {
	d := s.deps
	event, err := decision.Event()
	if err != nil {
		return nil, err
	}

	repo := d.milestones()
	m, err := repo.Get(ctx, milestoneID)
	if err != nil {
		return nil, err
	}

	next, err := lifecycle.Apply(m, event, actor)
	if err != nil {
		d.Metrics.Transitions.WithLabelValues(string(event), "refused").Inc()
		if !errors.Is(err, lifecycle.ErrIllegalTransition) {
			d.reportRefused(ctx, security.KindUnauthorizedAction, opReview, actor, milestoneID, err)
		}
		return nil, err
	}

	if err := repo.SetStatus(ctx, m.ID, m.Status, next); err != nil {
		result := "failed"
		if errors.Is(err, common.ErrConflict) {
			result = "conflict"
		}
		d.Metrics.Transitions.WithLabelValues(string(event), result).Inc()
		d.Logger.Warn(ctx, "review not applied", "milestone_id", m.ID, "actor_id", actor.ID, "operation", opReview, "error", err)
		return nil, err
	}

	m.Status = next
	m.UpdatedAt = d.Now()
	d.Metrics.Transitions.WithLabelValues(string(event), "ok").Inc()
	d.Logger.Info(ctx, "payment proof reviewed", "milestone_id", m.ID, "actor_id", actor.ID, "operation", opReview, "status", string(next))

	typ := events.PaymentApproved
	if next == models.StatusRejected {
		typ = events.PaymentRejected
	}
	d.emit(ctx, typ, m, actor)
	return m, nil
}

// ProofURL mints a short-lived URL for the owner to inspect the proof.
func (s *PaymentService) ProofURL(ctx context.Context, milestoneID string, actor models.Actor) (string, error) {
	d := s.deps
	m, err := d.milestones().Get(ctx, milestoneID)
	if err != nil {
		return "", err
	}
	if !actor.IsOwner(m) {
		err := fmt.Errorf("%w: only the owner may view the payment proof", common.ErrAuthorization)
		d.reportRefused(ctx, security.KindUnauthorizedAction, opProofURL, actor, milestoneID, err)
		return "", err
	}
	if !m.HasPaymentProof() && m.PaymentProofKey == "" {
		return "", fmt.Errorf("milestone %s has no payment proof: %w", m.ID, common.ErrNotFound)
	}

	key, err := objectKey(d.Buckets.Proofs, m.PaymentProofKey, m.PaymentProofURL)
	if err != nil {
		return "", err
	}
	return d.Store.PresignGet(ctx, d.Buckets.Proofs, key, SignedURLTTL)
}
