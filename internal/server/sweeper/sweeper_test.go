package sweeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/milestonegate/internal/server/metrics"
	"github.com/dmitrijs2005/milestonegate/internal/server/models"
	"github.com/dmitrijs2005/milestonegate/internal/server/repositories/milestones"
	"github.com/dmitrijs2005/milestonegate/internal/testkit"
)

var now = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func newSweeper(store *testkit.MemoryStore, refs Referencer) (*Sweeper, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	s := New(store, refs, Options{
		ProofsBucket:       "payment-proofs",
		DeliverablesBucket: "deliverables",
		Grace:              time.Hour,
		PreviewTTL:         24 * time.Hour,
		Interval:           time.Minute,
		Counter:            m.OrphansDeleted,
	})
	s.now = func() time.Time { return now }
	return s, m
}

func TestSweepOnce(t *testing.T) {
	repo := testkit.NewMilestoneRepo(models.Milestone{
		ID:              "m1",
		PaymentProofKey: "m1/1-live.png",
		PaymentProofURL: "https://objects.test/payment-proofs/m1/1-live.png",
		Deliverable: &models.Deliverable{
			Name: "a.pdf",
			URL:  "https://x.co/storage/v1/object/public/deliverables/f1/m1/1-legacy.pdf",
		},
	})
	store := testkit.NewMemoryStore()
	old := now.Add(-2 * time.Hour)

	store.Seed("payment-proofs", "m1/1-live.png", []byte("x"), old)
	store.Seed("payment-proofs", "m1/0-orphan.png", []byte("x"), old)
	store.Seed("payment-proofs", "m1/2-fresh.png", []byte("x"), now.Add(-time.Minute))
	store.Seed("deliverables", "f1/m1/1-legacy.pdf", []byte("x"), old)
	store.Seed("deliverables", "f1/m1/0-orphan.pdf", []byte("x"), old)
	store.Seed("deliverables", "previews/m1/old.jpg", []byte("x"), now.Add(-26*time.Hour))
	store.Seed("deliverables", "previews/m1/new.jpg", []byte("x"), now.Add(-2*time.Hour))

	s, m := newSweeper(store, repo)
	res, err := s.SweepOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Result{Scanned: 7, Deleted: 3}, res)
	assert.Equal(t, []string{
		"deliverables/f1/m1/1-legacy.pdf",
		"deliverables/previews/m1/new.jpg",
		"payment-proofs/m1/1-live.png",
		"payment-proofs/m1/2-fresh.png",
	}, store.Keys())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrphansDeleted.WithLabelValues("payment-proofs")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrphansDeleted.WithLabelValues("deliverables")))
}

type failingRefs struct{}

func (failingRefs) KeyReferenced(context.Context, milestones.ObjectKind, string) (bool, error) {
	return false, errors.New("db down")
}

func TestSweepOnce_ReferenceErrorKeepsObject(t *testing.T) {
	store := testkit.NewMemoryStore()
	store.Seed("payment-proofs", "m1/1.png", []byte("x"), now.Add(-48*time.Hour))

	s, _ := newSweeper(store, failingRefs{})
	res, err := s.SweepOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Deleted)
	assert.Len(t, store.Keys(), 1)
}

func TestSweepOnce_ListError(t *testing.T) {
	store := testkit.NewMemoryStore()
	store.ListErr = errors.New("timeout")

	s, _ := newSweeper(store, testkit.NewMilestoneRepo())
	_, err := s.SweepOnce(context.Background())
	assert.Error(t, err)
}

func TestStart_StopsOnCancel(t *testing.T) {
	s, _ := newSweeper(testkit.NewMemoryStore(), testkit.NewMilestoneRepo())
	s.opts.Interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
