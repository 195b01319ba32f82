package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/server/lifecycle"
	"github.com/dmitrijs2005/milestonegate/internal/server/models"
	"github.com/dmitrijs2005/milestonegate/internal/server/security"
	"github.com/dmitrijs2005/milestonegate/internal/server/watermark"
)

const (
	opDownload = "download"
	opPreview  = "preview"
)

// PreviewRenderer produces stamped derivatives; *watermark.Renderer in
// production.
type PreviewRenderer interface {
	Render(ctx context.Context, milestoneID, originKey, text string, kind watermark.MediaKind) (watermark.Preview, error)
}

// PreviewResult is a signed URL to a derivative, never to the original.
type PreviewResult struct {
	URL         string
	ContentType string
}

// AccessService issues signed URLs: the clean deliverable after approval,
// and stamped previews before it.
type AccessService struct {
	deps     Deps
	renderer PreviewRenderer
}

func NewAccessService(deps Deps, renderer PreviewRenderer) *AccessService {
	return &AccessService{deps: deps.withDefaults(), renderer: renderer}
}

func isParty(actor models.Actor, m *models.Milestone) bool {
	return actor.IsClient(m) || actor.IsOwner(m)
}

// Get returns the milestone to either party. Asset URLs on the returned
// record are not signed and must not be handed to the client.
func (s *AccessService) Get(ctx context.Context, milestoneID string, actor models.Actor) (*models.Milestone, error) {
	m, err := s.deps.milestones().Get(ctx, milestoneID)
	if err != nil {
		return nil, err
	}
	if !isParty(actor, m) {
		err := fmt.Errorf("%w: actor is not a party to milestone %s", common.ErrAuthorization, m.ID)
		s.deps.reportRefused(ctx, security.KindUnauthorizedAction, "get", actor, m.ID, err)
		return nil, err
	}
	return m, nil
}

// DownloadURL mints a 60 second URL to the original deliverable. It fails
// with common.ErrAuthorization unless the milestone is approved and has a
// deliverable. The URL is never stored.
func (s *AccessService) DownloadURL(ctx context.Context, milestoneID string, actor models.Actor) (string, error) {
	d := s.deps
	m, err := d.milestones().Get(ctx, milestoneID)
	if err != nil {
		return "", err
	}

	if !isParty(actor, m) {
		err := fmt.Errorf("%w: actor is not a party to milestone %s", common.ErrAuthorization, m.ID)
		d.reportRefused(ctx, security.KindUnauthorizedDownload, opDownload, actor, m.ID, err)
		return "", err
	}
	if m.Status == models.StatusApproved && m.Deliverable == nil {
		err := fmt.Errorf("%w: no deliverable uploaded: %w", common.ErrAuthorization, common.ErrNotFound)
		d.reportRefused(ctx, security.KindUnauthorizedDownload, opDownload, actor, m.ID, err)
		return "", err
	}
	if !lifecycle.DownloadAllowed(m) {
		err := fmt.Errorf("%w: %w", common.ErrAuthorization, common.ErrPaymentNotApproved)
		d.reportRefused(ctx, security.KindUnauthorizedDownload, opDownload, actor, m.ID, err)
		return "", err
	}

	key, err := objectKey(d.Buckets.Deliverables, m.Deliverable.StorageKey, m.Deliverable.URL)
	if err != nil {
		d.Logger.Error(ctx, "deliverable key unresolved", "milestone_id", m.ID, "operation", opDownload, "error", err)
		return "", err
	}

	url, err := d.Store.PresignGet(ctx, d.Buckets.Deliverables, key, SignedURLTTL)
	if err != nil {
		d.Logger.Error(ctx, "sign failed", "milestone_id", m.ID, "operation", opDownload, "key", key, "error", err)
		return "", err
	}
	d.Logger.Info(ctx, "download issued", "milestone_id", m.ID, "actor_id", actor.ID, "operation", opDownload, "key", key)
	return url, nil
}

// Preview returns a signed URL to a watermarked derivative while payment is
// outstanding. Once approved it returns common.ErrPreviewSuperseded; any
// rendering problem is common.ErrPreviewUnavailable.
func (s *AccessService) Preview(ctx context.Context, milestoneID string, actor models.Actor) (PreviewResult, error) {
	d := s.deps
	m, err := d.milestones().Get(ctx, milestoneID)
	if err != nil {
		return PreviewResult{}, err
	}

	if !isParty(actor, m) {
		err := fmt.Errorf("%w: actor is not a party to milestone %s", common.ErrAuthorization, m.ID)
		d.reportRefused(ctx, security.KindUnauthorizedDownload, opPreview, actor, m.ID, err)
		return PreviewResult{}, err
	}
	if m.Status == models.StatusApproved {
		return PreviewResult{}, fmt.Errorf("%w: milestone %s is approved", common.ErrPreviewSuperseded, m.ID)
	}
	if m.Deliverable == nil {
		return PreviewResult{}, fmt.Errorf("milestone %s has no deliverable: %w", m.ID, common.ErrNotFound)
	}

	origin, err := objectKey(d.Buckets.Deliverables, m.Deliverable.StorageKey, m.Deliverable.URL)
	if err != nil {
		return PreviewResult{}, fmt.Errorf("%w: %w", common.ErrPreviewUnavailable, err)
	}

	kind := watermark.KindOf(m.Deliverable.Name)
	if kind == watermark.KindUnknown {
		kind = watermark.KindOf(origin)
	}

	p, err := s.renderer.Render(ctx, m.ID, origin, watermark.TextOrDefault(m.WatermarkText), kind)
	if err != nil {
		d.Logger.Warn(ctx, "preview unavailable", "milestone_id", m.ID, "operation", opPreview, "error", err)
		return PreviewResult{}, err
	}

	url, err := d.Store.PresignGet(ctx, p.Bucket, p.Key, SignedURLTTL)
	if err != nil {
		return PreviewResult{}, fmt.Errorf("%w: %w", common.ErrPreviewUnavailable, err)
	}
	return PreviewResult{URL: url, ContentType: p.ContentType}, nil
}
