package metrics_config

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectors(t *testing.T) {
	require.True(t, MetricsEnabled())
	g := NewGaugeVec("TestGauges", "test gauges")
	require.NotNil(t, g)
	g.WithLabelValues("head").Set(42)
	assert.Equal(t, 42.0, testutil.ToFloat64(g.WithLabelValues("head")))

	c := NewCounterVec("TestCounters", "test counters")
	require.NotNil(t, c)
	c.WithLabelValues("sent").Inc()
	c.WithLabelValues("sent").Inc()
	assert.Equal(t, 2.0, testutil.ToFloat64(c.WithLabelValues("sent")))
}

func TestProcessGauges(t *testing.T) {
	g := newProcessGauges(t.TempDir())
	g.update()
	assert.Greater(t, testutil.ToFloat64(g.cpu.WithLabelValues("Go_routines")), 0.0)
	assert.Greater(t, testutil.ToFloat64(g.mem.WithLabelValues("Used")), 0.0)
}
