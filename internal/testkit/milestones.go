package testkit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/dbx"
	"github.com/dmitrijs2005/milestonegate/internal/server/models"
	"github.com/dmitrijs2005/milestonegate/internal/server/repositories/milestones"
	"github.com/dmitrijs2005/milestonegate/internal/server/repositories/repomanager"
)

// MilestoneRepo is a lightweight in-memory milestones.Repository fake with
// the same compare-and-swap semantics as the Postgres implementation.
// Setting one of the *Err fields makes the matching write fail.
type MilestoneRepo struct {
	mu   sync.Mutex
	rows map[string]models.Milestone
	Now  func() time.Time

	GetErr         error
	SubmitProofErr error
	SetStatusErr   error
	ReplaceErr     error
	WatermarkErr   error

	// BeforeWrite runs inside every write before the swap, to simulate a
	// concurrent writer changing the row.
	BeforeWrite func(id string)
}

var _ milestones.Repository = (*MilestoneRepo)(nil)

func NewMilestoneRepo(rows ...models.Milestone) *MilestoneRepo {
	r := &MilestoneRepo{rows: map[string]models.Milestone{}, Now: time.Now}
	for _, m := range rows {
		r.rows[m.ID] = m
	}
	return r
}

// Put stores or replaces a row directly.
func (r *MilestoneRepo) Put(m models.Milestone) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[m.ID] = m
}

// Row returns a copy of a stored row.
func (r *MilestoneRepo) Row(id string) models.Milestone {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.rows[id])
}

func clone(m models.Milestone) models.Milestone {
	if m.Deliverable != nil {
		d := *m.Deliverable
		m.Deliverable = &d
	}
	if m.WatermarkText != nil {
		w := *m.WatermarkText
		m.WatermarkText = &w
	}
	return m
}

func (r *MilestoneRepo) beforeWrite(id string) {
	if r.BeforeWrite != nil {
		r.BeforeWrite(id)
	}
}

func (r *MilestoneRepo) Get(_ context.Context, id string) (*models.Milestone, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.GetErr != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrPersistence, r.GetErr)
	}
	m, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("milestone %s: %w", id, common.ErrNotFound)
	}
	c := clone(m)
	return &c, nil
}

func (r *MilestoneRepo) swap(id string, expected models.Status) (models.Milestone, error) {
	m, ok := r.rows[id]
	if !ok {
		return m, fmt.Errorf("milestone %s: %w", id, common.ErrNotFound)
	}
	if m.Status != expected {
		return m, fmt.Errorf("%w: milestone %s is %s, expected %s", common.ErrConflict, id, m.Status, expected)
	}
	return m, nil
}

func (r *MilestoneRepo) SubmitProof(_ context.Context, id string, expected models.Status, proof models.ObjectRef) (milestones.Replaced, error) {
	r.beforeWrite(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SubmitProofErr != nil {
		return milestones.Replaced{}, fmt.Errorf("%w: %w", common.ErrPersistence, r.SubmitProofErr)
	}
	m, err := r.swap(id, expected)
	if err != nil {
		return milestones.Replaced{}, err
	}
	old := milestones.Replaced{URL: m.PaymentProofURL, Key: m.PaymentProofKey}
	m.Status = models.StatusPaymentSubmitted
	m.PaymentProofURL = proof.URL
	m.PaymentProofKey = proof.Key
	m.UpdatedAt = r.Now()
	r.rows[id] = m
	return old, nil
}

func (r *MilestoneRepo) SetStatus(_ context.Context, id string, expected, next models.Status) error {
	r.beforeWrite(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SetStatusErr != nil {
		return fmt.Errorf("%w: %w", common.ErrPersistence, r.SetStatusErr)
	}
	m, err := r.swap(id, expected)
	if err != nil {
		return err
	}
	m.Status = next
	m.UpdatedAt = r.Now()
	r.rows[id] = m
	return nil
}

func (r *MilestoneRepo) ReplaceDeliverable(_ context.Context, id string, u milestones.DeliverableUpdate) (milestones.Replaced, error) {
	r.beforeWrite(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ReplaceErr != nil {
		return milestones.Replaced{}, fmt.Errorf("%w: %w", common.ErrPersistence, r.ReplaceErr)
	}
	m, ok := r.rows[id]
	if !ok {
		return milestones.Replaced{}, fmt.Errorf("milestone %s: %w", id, common.ErrNotFound)
	}
	var old milestones.Replaced
	if m.Deliverable != nil {
		old = milestones.Replaced{URL: m.Deliverable.URL, Key: m.Deliverable.StorageKey}
	}
	d := u.Deliverable
	m.Deliverable = &d
	if u.SetWatermark {
		m.WatermarkText = u.Watermark
	}
	m.UpdatedAt = r.Now()
	r.rows[id] = clone(m)
	return old, nil
}

func (r *MilestoneRepo) SetWatermark(_ context.Context, id string, text *string) error {
	r.beforeWrite(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.WatermarkErr != nil {
		return fmt.Errorf("%w: %w", common.ErrPersistence, r.WatermarkErr)
	}
	m, ok := r.rows[id]
	if !ok {
		return fmt.Errorf("milestone %s: %w", id, common.ErrNotFound)
	}
	m.WatermarkText = text
	m.UpdatedAt = r.Now()
	r.rows[id] = clone(m)
	return nil
}

func (r *MilestoneRepo) KeyReferenced(_ context.Context, kind milestones.ObjectKind, key string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.rows {
		switch kind {
		case milestones.KindPaymentProof:
			if m.PaymentProofKey == key || (m.PaymentProofURL != "" && strings.HasSuffix(m.PaymentProofURL, "/"+key)) {
				return true, nil
			}
		case milestones.KindDeliverable:
			if d := m.Deliverable; d != nil && (d.StorageKey == key || strings.HasSuffix(d.URL, "/"+key)) {
				return true, nil
			}
		}
	}
	return false, nil
}

// RepoManager hands out the same MilestoneRepo for every DBTX.
type RepoManager struct {
	Repo          *MilestoneRepo
	MigrationsErr error
}

var _ repomanager.RepositoryManager = (*RepoManager)(nil)

func (m *RepoManager) RunMigrations(context.Context, *sql.DB) error { return m.MigrationsErr }

func (m *RepoManager) Milestones(dbx.DBTX) milestones.Repository { return m.Repo }
