package providers

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ytstat/internal/models"
	"ytstat/internal/structures"
)

type metricsTestPool struct{}

func (m *metricsTestPool) Len() int       { return 3 }
func (m *metricsTestPool) Available() int { return 2 }

func useTestRegistry(t *testing.T) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	prevReg, prevGather := prometheus.DefaultRegisterer, prometheus.DefaultGatherer
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	t.Cleanup(func() {
		prometheus.DefaultRegisterer = prevReg
		prometheus.DefaultGatherer = prevGather
	})
	return reg
}

func TestNoopMetrics_WhenDisabled(t *testing.T) {
	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: false},
	}
	m := NewMetricsProvider(conf, &metricsTestPool{})
	_, ok := m.(*noopMetrics)
	assert.True(t, ok, "should return noopMetrics when disabled")

	m.IncRequestsTotal("/test", 200)
	m.ObserveRequestDuration("/test", time.Millisecond)
	m.IncCacheHits()
	m.IncCacheMisses()
	m.ObservePersistenceDuration(time.Millisecond)
	m.ObserveAPICall("videos.list", "ok")
	m.IncKeyRotations()
	m.SetQuota([]models.CredentialStatus{{ID: "k1"}})
	m.ObserveCycle("light", "ok", time.Second)
	m.SetEntitiesTotal("videos", 10)
	m.AddEntitiesFailed("videos", 1)
}

func TestMetricsProvider_WhenEnabled(t *testing.T) {
	reg := useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf, &metricsTestPool{})
	_, ok := m.(*MetricsProvider)
	require.True(t, ok, "should return MetricsProvider when enabled")

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["ytstat_keys_total"])
	assert.True(t, names["ytstat_keys_available"])
}

func TestMetricsProvider_Counters(t *testing.T) {
	useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf, nil).(*MetricsProvider)

	m.ObserveAPICall("videos.list", "ok")
	m.ObserveAPICall("videos.list", "ok")
	m.ObserveAPICall("search.list", "quota")
	m.IncKeyRotations()
	m.AddEntitiesFailed("videos", 3)
	m.AddEntitiesFailed("videos", 0)
	m.ObserveCycle("light", "ok", 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.apiCalls.WithLabelValues("videos.list", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiCalls.WithLabelValues("search.list", "quota")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.keyRotations))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.entitiesFailed.WithLabelValues("videos")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues("light", "ok")))
}

func TestMetricsProvider_SetQuotaDropsRemovedKeys(t *testing.T) {
	useTestRegistry(t)

	conf := &structures.Config{
		Metrics: structures.MetricsConfig{Enabled: true},
	}
	m := NewMetricsProvider(conf, nil).(*MetricsProvider)

	m.SetQuota([]models.CredentialStatus{{ID: "k1", Used: 10, Limit: 100}, {ID: "k2", Used: 5, Limit: 100}})
	assert.Equal(t, 2, testutil.CollectAndCount(m.quotaUsed))

	m.SetQuota([]models.CredentialStatus{{ID: "k2", Used: 7, Limit: 100}})
	assert.Equal(t, 1, testutil.CollectAndCount(m.quotaUsed))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.quotaUsed.WithLabelValues("k2")))
}

func TestHttpStatusBucket(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{201, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{404, "4xx"},
		{500, "5xx"},
		{503, "5xx"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, httpStatusBucket(tt.code))
	}
}
