package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/server/events"
	"github.com/dmitrijs2005/milestonegate/internal/server/models"
	"github.com/dmitrijs2005/milestonegate/internal/server/repositories/milestones"
	"github.com/dmitrijs2005/milestonegate/internal/server/security"
)

const (
	opUploadDeliverable = "upload_deliverable"
	opUpdateWatermark   = "update_watermark"
)

// maxWatermarkLength bounds the text stamped on previews.
const maxWatermarkLength = 120

// DeliverableService lets the owner attach or replace the deliverable and
// its watermark text at any status.
type DeliverableService struct {
	deps Deps
}

func NewDeliverableService(deps Deps) *DeliverableService {
	return &DeliverableService{deps: deps.withDefaults()}
}

func (s *DeliverableService) authorizeOwner(ctx context.Context, op string, actor models.Actor, m *models.Milestone) error {
	if actor.IsOwner(m) {
		return nil
	}
	err := fmt.Errorf("%w: only the owner may change the deliverable of %s", common.ErrAuthorization, m.ID)
	s.deps.reportRefused(ctx, security.KindUnauthorizedAction, op, actor, m.ID, err)
	return err
}

// Upload stores file under <freelancer>/<milestone>/ and replaces the
// deliverable fields in one update. watermark, when non-nil, is stored in
// the same update. A failed update deletes the new object.
func (s *DeliverableService) Upload(ctx context.Context, milestoneID string, actor models.Actor, file models.Upload, watermark *string) (*models.Milestone, error) {
	d := s.deps
	log := d.Logger.With("milestone_id", milestoneID, "actor_id", actor.ID, "operation", opUploadDeliverable)

	if err := validateWatermark(watermark); err != nil {
		return nil, err
	}
	if err := d.checkUpload(ctx, opUploadDeliverable, milestoneID, actor, file); err != nil {
		log.Warn(ctx, "deliverable rejected", "step", "validate", "error", err)
		return nil, err
	}

	repo := d.milestones()
	m, err := repo.Get(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(ctx, opUploadDeliverable, actor, m); err != nil {
		return nil, err
	}

	key := deliverableKey(m.FreelancerID, m.ID, d.Now(), file.Name)
	ref := models.ObjectRef{
		Bucket: d.Buckets.Deliverables,
		Key:    key,
		URL:    d.Store.ObjectURL(d.Buckets.Deliverables, key),
	}
	update := milestones.DeliverableUpdate{
		Deliverable: models.Deliverable{
			Name:       file.Name,
			Size:       file.Size(),
			URL:        ref.URL,
			StorageKey: ref.Key,
		},
		SetWatermark: watermark != nil,
		Watermark:    normalizeWatermark(watermark),
	}

	var old milestones.Replaced
	err = d.uploadThenRecord(ctx, opUploadDeliverable, ref, file, func(ctx context.Context) (err error) {
		old, err = repo.ReplaceDeliverable(ctx, m.ID, update)
		return err
	})
	if err != nil {
		return nil, err
	}
	d.deleteSuperseded(ctx, d.Buckets.Deliverables, old, ref.Key)

	deliverable := update.Deliverable
	m.Deliverable = &deliverable
	if update.SetWatermark {
		m.WatermarkText = update.Watermark
	}
	m.UpdatedAt = d.Now()

	log.Info(ctx, "deliverable uploaded", "key", ref.Key, "size", file.Size())
	d.emit(ctx, events.DeliverableUploaded, m, actor)
	return m, nil
}

// UpdateWatermark changes the preview text without touching the file.
// A nil or blank text clears it.
func (s *DeliverableService) UpdateWatermark(ctx context.Context, milestoneID string, actor models.Actor, text *string) (*models.Milestone, error) {
	d := s.deps
	if err := validateWatermark(text); err != nil {
		return nil, err
	}

	repo := d.milestones()
	m, err := repo.Get(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeOwner(ctx, opUpdateWatermark, actor, m); err != nil {
		return nil, err
	}

	text = normalizeWatermark(text)
	if err := repo.SetWatermark(ctx, m.ID, text); err != nil {
		d.Logger.Error(ctx, "watermark update failed", "milestone_id", m.ID, "actor_id", actor.ID, "operation", opUpdateWatermark, "error", err)
		return nil, err
	}

	m.WatermarkText = text
	m.UpdatedAt = d.Now()
	d.Logger.Info(ctx, "watermark updated", "milestone_id", m.ID, "actor_id", actor.ID, "operation", opUpdateWatermark)
	d.emit(ctx, events.WatermarkUpdated, m, actor)
	return m, nil
}

func validateWatermark(text *string) error {
	if text != nil && len([]rune(*text)) > maxWatermarkLength {
		return fmt.Errorf("%w: watermark longer than %d characters", common.ErrValidation, maxWatermarkLength)
	}
	return nil
}

func normalizeWatermark(text *string) *string {
	if text == nil {
		return nil
	}
	t := strings.TrimSpace(*text)
	if t == "" {
		return nil
	}
	return &t
}
