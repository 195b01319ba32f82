package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/milestonegate/internal/common"
	"github.com/dmitrijs2005/milestonegate/internal/dbx"
	"github.com/dmitrijs2005/milestonegate/internal/logging"
	"github.com/dmitrijs2005/milestonegate/internal/server/events"
	"github.com/dmitrijs2005/milestonegate/internal/server/metrics"
	"github.com/dmitrijs2005/milestonegate/internal/server/models"
	"github.com/dmitrijs2005/milestonegate/internal/server/ratelimit"
	"github.com/dmitrijs2005/milestonegate/internal/server/repositories/milestones"
	"github.com/dmitrijs2005/milestonegate/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/milestonegate/internal/server/saga"
	"github.com/dmitrijs2005/milestonegate/internal/server/security"
	"github.com/dmitrijs2005/milestonegate/internal/server/storage"
	"github.com/dmitrijs2005/milestonegate/internal/server/validation"
)

// SignedURLTTL is the lifetime of every signed URL the services mint.
const SignedURLTTL = 60 * time.Second

// Buckets names the two logical buckets.
type Buckets struct {
	Proofs       string
	Deliverables string
}

// Emitter publishes lifecycle events without failing the caller.
type Emitter interface {
	Emit(ctx context.Context, e events.Event)
}

// Deps are the collaborators shared by the workflow services. Limiter,
// Monitor, Events, Logger and Now have working defaults when left nil.
type Deps struct {
	DB      dbx.DBTX
	Repos   repomanager.RepositoryManager
	Store   storage.ObjectStore
	Buckets Buckets
	Limiter ratelimit.Limiter
	Monitor security.Monitor
	Events  Emitter
	Metrics *metrics.Metrics
	Logger  logging.Logger
	Now     func() time.Time
}

type nopEmitter struct{}

func (nopEmitter) Emit(context.Context, events.Event) {}

func (d Deps) withDefaults() Deps {
	if d.Limiter == nil {
		d.Limiter = ratelimit.Unlimited{}
	}
	if d.Monitor == nil {
		d.Monitor = security.NopMonitor{}
	}
	if d.Events == nil {
		d.Events = nopEmitter{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New(prometheus.NewRegistry())
	}
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

func (d Deps) milestones() milestones.Repository {
	return d.Repos.Milestones(d.DB)
}

// checkUpload validates the file and applies the per-actor rate limit.
// Suspicious files and throttled actors are reported to the monitor.
func (d Deps) checkUpload(ctx context.Context, op, milestoneID string, actor models.Actor, file models.Upload) error {
	if err := validation.ValidateUpload(file); err != nil {
		if validation.IsSuspicious(err) {
			d.Monitor.Report(ctx, security.Event{
				Kind:        security.KindSuspiciousUpload,
				ActorID:     actor.ID,
				MilestoneID: milestoneID,
				Operation:   op,
				Detail:      err.Error(),
			})
		}
		return err
	}

	if err := d.Limiter.Allow(ctx, actor.ID, op); err != nil {
		d.Metrics.RateLimited.WithLabelValues(op).Inc()
		d.Monitor.Report(ctx, security.Event{
			Kind:        security.KindRateLimited,
			ActorID:     actor.ID,
			MilestoneID: milestoneID,
			Operation:   op,
		})
		return err
	}
	return nil
}

func (d Deps) reportRefused(ctx context.Context, kind security.Kind, op string, actor models.Actor, milestoneID string, err error) {
	d.Monitor.Report(ctx, security.Event{
		Kind:        kind,
		ActorID:     actor.ID,
		MilestoneID: milestoneID,
		Operation:   op,
		Detail:      err.Error(),
	})
}

// uploadThenRecord stores body and runs record. If record fails the object
// is deleted again, so no unreferenced upload survives the call.
func (d Deps) uploadThenRecord(ctx context.Context, workflow string, ref models.ObjectRef, file models.Upload, record func(ctx context.Context) error) error {
	log := d.Logger.With("operation", workflow, "key", ref.Key)
	uploaded := false

	err := saga.RunWithCompensation(ctx,
		func(ctx context.Context) error {
			if err := d.Store.Put(ctx, ref.Bucket, ref.Key, file.Data, file.ContentType); err != nil {
				log.Error(ctx, "upload failed", "step", "upload", "error", err)
				return err
			}
			uploaded = true
			return nil
		},
		func(ctx context.Context) error {
			return d.Store.Delete(ctx, ref.Bucket, ref.Key)
		},
		func(ctx context.Context) error {
			if err := record(ctx); err != nil {
				log.Error(ctx, "record update failed", "step", "record", "error", err)
				return err
			}
			return nil
		},
	)
	if err == nil || !uploaded {
		return err
	}

	if errors.Is(err, saga.ErrCompensation) {
		d.Metrics.CompensationRuns.WithLabelValues(workflow, "failed").Inc()
		log.Error(ctx, "compensation failed, object left for sweeper", "step", "compensate", "error", err)
	} else {
		d.Metrics.CompensationRuns.WithLabelValues(workflow, "ok").Inc()
		log.Warn(ctx, "upload rolled back", "step", "compensate")
	}
	return err
}

// deleteSuperseded removes the object a committed write replaced. Failures
// only log; the orphan sweeper retries later.
func (d Deps) deleteSuperseded(ctx context.Context, bucket string, old milestones.Replaced, current string) {
	key, err := objectKey(bucket, old.Key, old.URL)
	if err != nil || key == current {
		return
	}
	if err := d.Store.Delete(context.WithoutCancel(ctx), bucket, key); err != nil {
		d.Logger.Warn(ctx, "superseded object not deleted", "bucket", bucket, "key", key, "error", err)
	}
}

// objectKey prefers the canonical key and falls back to parsing the URL
// recorded on older rows.
func objectKey(bucket, key, url string) (string, error) {
	if key != "" {
		return key, nil
	}
	if url == "" {
		return "", fmt.Errorf("%w: no object recorded", common.ErrNotFound)
	}
	return storage.KeyFromURL(bucket, url)
}

func proofKey(milestoneID string, at time.Time, name string) string {
	return fmt.Sprintf("%s/%d-%s", milestoneID, at.UnixMilli(), validation.SanitizeFileName(name))
}

func deliverableKey(freelancerID, milestoneID string, at time.Time, name string) string {
	return fmt.Sprintf("%s/%s/%d-%s", freelancerID, milestoneID, at.UnixMilli(), validation.SanitizeFileName(name))
}

func (d Deps) emit(ctx context.Context, typ string, m *models.Milestone, actor models.Actor) {
	d.Events.Emit(ctx, events.Event{
		Type:        typ,
		MilestoneID: m.ID,
		ActorID:     actor.ID,
		Status:      string(m.Status),
		OccurredAt:  d.Now().UTC(),
	})
}
