package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Transitions.WithLabelValues("approve", "ok").Inc()
	m.ObserveGRPC("/milestones.v1.Milestones/Review", "OK", 10*time.Millisecond)
	m.ObserveHTTP("GET", "/healthz", "200", time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transitions.WithLabelValues("approve", "ok")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["milestonegate_transitions_total"])
	assert.True(t, names["milestonegate_grpc_request_duration_seconds"])
	assert.True(t, names["milestonegate_http_request_duration_seconds"])
}

func TestNew_TwoRegistriesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
