// Package sweeper deletes stored objects that no milestone references:
// uploads whose saga could not compensate, superseded files whose delete
// failed, and expired preview derivatives.
package sweeper

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/milestonegate/internal/logging"
	"github.com/dmitrijs2005/milestonegate/internal/server/repositories/milestones"
	"github.com/dmitrijs2005/milestonegate/internal/server/storage"
	"github.com/dmitrijs2005/milestonegate/internal/server/watermark"
)

// Referencer reports whether a milestone row still points at a key.
type Referencer interface {
	KeyReferenced(ctx context.Context, kind milestones.ObjectKind, key string) (bool, error)
}

type Options struct {
	ProofsBucket       string
	DeliverablesBucket string
	// Grace keeps fresh objects whose row update may still be in flight.
	Grace      time.Duration
	PreviewTTL time.Duration
	Interval   time.Duration
	Logger     logging.Logger
	Counter    *prometheus.CounterVec
}

type Sweeper struct {
	store storage.ObjectStore
	refs  Referencer
	opts  Options
	now   func() time.Time
}

// Result summarises one pass.
type Result struct {
	Scanned int
	Deleted int
}

func New(store storage.ObjectStore, refs Referencer, opts Options) *Sweeper {
	if opts.Logger == nil {
		opts.Logger = logging.Nop{}
	}
	return &Sweeper{store: store, refs: refs, opts: opts, now: time.Now}
}

// Start sweeps every Interval until ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := s.SweepOnce(ctx)
			if err != nil {
				s.opts.Logger.Error(ctx, "sweep failed", "error", err)
				continue
			}
			if res.Deleted > 0 {
				s.opts.Logger.Info(ctx, "sweep finished", "scanned", res.Scanned, "deleted", res.Deleted)
			}
		}
	}
}

// SweepOnce runs a single pass over both buckets. A failure on one object
// is logged and skipped; listing failures are returned.
func (s *Sweeper) SweepOnce(ctx context.Context) (Result, error) {
	var total Result
	var errs []error

	res, err := s.sweepBucket(ctx, s.opts.ProofsBucket, milestones.KindPaymentProof)
	total.add(res)
	errs = append(errs, err)

	res, err = s.sweepBucket(ctx, s.opts.DeliverablesBucket, milestones.KindDeliverable)
	total.add(res)
	errs = append(errs, err)

	return total, errors.Join(errs...)
}

func (r *Result) add(o Result) {
	r.Scanned += o.Scanned
	r.Deleted += o.Deleted
}

func (s *Sweeper) sweepBucket(ctx context.Context, bucket string, kind milestones.ObjectKind) (Result, error) {
	objects, err := s.store.List(ctx, bucket, "")
	if err != nil {
		return Result{}, err
	}

	now := s.now()
	var res Result
	for _, o := range objects {
		res.Scanned++
		age := now.Sub(o.LastModified)

		if kind == milestones.KindDeliverable && strings.HasPrefix(o.Key, watermark.PreviewPrefix) {
			if age > s.opts.PreviewTTL+s.opts.Grace && s.delete(ctx, bucket, o.Key, "preview expired") {
				res.Deleted++
			}
			continue
		}

		if age <= s.opts.Grace {
			continue
		}
		referenced, err := s.refs.KeyReferenced(ctx, kind, o.Key)
		if err != nil {
			s.opts.Logger.Warn(ctx, "reference check failed", "bucket", bucket, "key", o.Key, "error", err)
			continue
		}
		if !referenced && s.delete(ctx, bucket, o.Key, "unreferenced") {
			res.Deleted++
		}
	}
	return res, nil
}

func (s *Sweeper) delete(ctx context.Context, bucket, key, reason string) bool {
	if err := s.store.Delete(ctx, bucket, key); err != nil {
		s.opts.Logger.Warn(ctx, "orphan delete failed", "bucket", bucket, "key", key, "error", err)
		return false
	}
	s.opts.Logger.Info(ctx, "orphan deleted", "bucket", bucket, "key", key, "reason", reason)
	if s.opts.Counter != nil {
		s.opts.Counter.WithLabelValues(bucket).Inc()
	}
	return true
}
