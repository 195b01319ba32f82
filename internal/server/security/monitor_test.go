package security

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/milestonegate/internal/server/metrics"
	"github.com/dmitrijs2005/milestonegate/internal/testkit"
)

func TestLogMonitor_Report(t *testing.T) {
	log := testkit.NewRecordingLogger()
	m := metrics.New(prometheus.NewRegistry())
	mon := NewLogMonitor(log, m.SecurityEvents)

	mon.Report(context.Background(), Event{
		Kind:        KindSuspiciousUpload,
		ActorID:     "c1",
		MilestoneID: "m1",
		Operation:   "submit_proof",
		Detail:      "declared image/jpeg, content is application/x-msdownload",
	})

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "warn", entries[0].Level)
	assert.Contains(t, entries[0].Args, "suspicious_upload")
	assert.Contains(t, entries[0].Args, "security")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SecurityEvents.WithLabelValues("suspicious_upload")))
}

func TestLogMonitor_NilCounter(t *testing.T) {
	mon := NewLogMonitor(testkit.NewRecordingLogger(), nil)
	assert.NotPanics(t, func() {
		mon.Report(context.Background(), Event{Kind: KindRateLimited})
	})
}
