package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"ytstat/internal/models"
	"ytstat/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	ObserveAPICall(op string, outcome string)
	IncKeyRotations()
	SetQuota(status []models.CredentialStatus)
	ObserveCycle(mode string, outcome string, duration time.Duration)
	SetEntitiesTotal(kind string, count int)
	AddEntitiesFailed(kind string, count int)
}

// KeyPoolStatus is the part of the key pool the metrics layer samples.
type KeyPoolStatus interface {
	Len() int
	Available() int
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	apiCalls            *prometheus.CounterVec
	keyRotations        prometheus.Counter
	quotaUsed           *prometheus.GaugeVec
	quotaLimit          *prometheus.GaugeVec
	cycles              *prometheus.CounterVec
	cycleDuration       *prometheus.HistogramVec
	entitiesTotal       *prometheus.GaugeVec
	entitiesFailed      *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) ObserveAPICall(op string, outcome string) {
	m.apiCalls.WithLabelValues(op, outcome).Inc()
}

func (m *MetricsProvider) IncKeyRotations() {
	m.keyRotations.Inc()
}

// SetQuota replaces the per-key gauges so removed keys disappear.
func (m *MetricsProvider) SetQuota(status []models.CredentialStatus) {
	m.quotaUsed.Reset()
	m.quotaLimit.Reset()
	for _, s := range status {
		m.quotaUsed.WithLabelValues(s.ID).Set(float64(s.Used))
		m.quotaLimit.WithLabelValues(s.ID).Set(float64(s.Limit))
	}
}

func (m *MetricsProvider) ObserveCycle(mode string, outcome string, duration time.Duration) {
	m.cycles.WithLabelValues(mode, outcome).Inc()
	m.cycleDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

func (m *MetricsProvider) SetEntitiesTotal(kind string, count int) {
	m.entitiesTotal.WithLabelValues(kind).Set(float64(count))
}

func (m *MetricsProvider) AddEntitiesFailed(kind string, count int) {
	if count > 0 {
		m.entitiesFailed.WithLabelValues(kind).Add(float64(count))
	}
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, pool KeyPoolStatus) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ytstat_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ytstat_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ytstat_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ytstat_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ytstat_persistence_duration_seconds",
			Help:    "Duration of baseline save operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		apiCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ytstat_api_calls_total",
			Help: "Provider calls by operation and outcome",
		}, []string{"op", "outcome"}),

		keyRotations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ytstat_key_rotations_total",
			Help: "Number of times a call moved to another API key",
		}),

		quotaUsed: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ytstat_quota_used_units",
			Help: "Quota units used per API key in the current period",
		}, []string{"key"}),

		quotaLimit: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ytstat_quota_limit_units",
			Help: "Daily quota limit per API key",
		}, []string{"key"}),

		cycles: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ytstat_cycles_total",
			Help: "Collection cycles by mode and outcome",
		}, []string{"mode", "outcome"}),

		cycleDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ytstat_cycle_duration_seconds",
			Help:    "Collection cycle duration in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"mode"}),

		entitiesTotal: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ytstat_entities_total",
			Help: "Entities in the latest merged result",
		}, []string{"kind"}),

		entitiesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ytstat_entities_failed_total",
			Help: "Entities dropped from a cycle after a fetch failure",
		}, []string{"kind"}),
	}

	if pool != nil {
		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "ytstat_keys_total",
			Help: "Number of API keys in the pool",
		}, func() float64 {
			return float64(pool.Len())
		})

		promauto.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "ytstat_keys_available",
			Help: "Number of API keys that can still serve calls",
		}, func() float64 {
			return float64(pool.Available())
		})
	}

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) ObserveAPICall(_ string, _ string)                {}
func (n *noopMetrics) IncKeyRotations()                                 {}
func (n *noopMetrics) SetQuota(_ []models.CredentialStatus)             {}
func (n *noopMetrics) ObserveCycle(_ string, _ string, _ time.Duration) {}
func (n *noopMetrics) SetEntitiesTotal(_ string, _ int)                 {}
func (n *noopMetrics) AddEntitiesFailed(_ string, _ int)                {}

// NoopMetrics returns a provider that discards every observation.
func NoopMetrics() MetricsProviderInterface {
	return &noopMetrics{}
}
