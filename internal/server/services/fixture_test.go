package services

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrijs2005/milestonegate/internal/server/events"
	"github.com/dmitrijs2005/milestonegate/internal/server/metrics"
	"github.com/dmitrijs2005/milestonegate/internal/server/models"
	"github.com/dmitrijs2005/milestonegate/internal/server/security"
	"github.com/dmitrijs2005/milestonegate/internal/testkit"
)

var (
	testNow  = time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	client   = models.Actor{ID: "c1", Role: models.RoleClient}
	owner    = models.Actor{ID: "f1", Role: models.RoleFreelancer}
	stranger = models.Actor{ID: "f9", Role: models.RoleFreelancer}
)

type recordingMonitor struct {
	mu     sync.Mutex
	events []security.Event
}

func (m *recordingMonitor) Report(_ context.Context, e security.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
}

func (m *recordingMonitor) kinds() []security.Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []security.Kind
	for _, e := range m.events {
		out = append(out, e.Kind)
	}
	return out
}

type recordingEmitter struct {
	events []events.Event
}

func (r *recordingEmitter) Emit(_ context.Context, e events.Event) {
	r.events = append(r.events, e)
}

func (r *recordingEmitter) types() []string {
	var out []string
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type stubLimiter struct{ err error }

func (l stubLimiter) Allow(context.Context, string, string) error { return l.err }

type fixture struct {
	repo    *testkit.MilestoneRepo
	store   *testkit.MemoryStore
	log     *testkit.RecordingLogger
	monitor *recordingMonitor
	emitter *recordingEmitter
	metrics *metrics.Metrics
	deps    Deps
}

func newFixture(t *testing.T, rows ...models.Milestone) *fixture {
	t.Helper()
	f := &fixture{
		repo:    testkit.NewMilestoneRepo(rows...),
		store:   testkit.NewMemoryStore(),
		log:     testkit.NewRecordingLogger(),
		monitor: &recordingMonitor{},
		emitter: &recordingEmitter{},
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	clock := func() time.Time { return testNow }
	f.repo.Now = clock
	f.store.Now = clock
	f.deps = Deps{
		Repos:   &testkit.RepoManager{Repo: f.repo},
		Store:   f.store,
		Buckets: Buckets{Proofs: "payment-proofs", Deliverables: "deliverables"},
		Monitor: f.monitor,
		Events:  f.emitter,
		Metrics: f.metrics,
		Logger:  f.log,
		Now:     clock,
	}
	return f
}

func milestone(id string, status models.Status) models.Milestone {
	return models.Milestone{
		ID:           id,
		ProjectID:    "p1",
		Title:        "Logo design",
		PriceMinor:   50000,
		Status:       status,
		FreelancerID: owner.ID,
		ClientID:     client.ID,
		CreatedAt:    testNow.Add(-time.Hour),
		UpdatedAt:    testNow.Add(-time.Hour),
	}
}

func withDeliverable(m models.Milestone, name, key string) models.Milestone {
	m.Deliverable = &models.Deliverable{
		Name:       name,
		Size:       2048,
		URL:        "https://objects.test/deliverables/" + key,
		StorageKey: key,
	}
	return m
}

func pngUpload(name string, size int) models.Upload {
	data := bytes.Clone(testkit.SamplePNG)
	if size > len(data) {
		data = append(data, make([]byte, size-len(data))...)
	}
	return models.Upload{Name: name, ContentType: "image/png", Data: data}
}
