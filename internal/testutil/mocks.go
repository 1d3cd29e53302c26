package testutil

import (
	"context"
	"sync"
	"time"

	"ytstat/internal/models"
	"ytstat/internal/providers"
	"ytstat/internal/youtube"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.Logs {
		if e.Level == level {
			n++
		}
	}
	return n
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu     sync.Mutex
	Data   map[string][]byte
	Purges int
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Purges++
	m.Data = make(map[string][]byte)
}

// MockCompressor implements interfaces.CompressorInterface with injectable behavior.
type MockCompressor struct {
	CompressFn   func([]byte) ([]byte, error)
	DecompressFn func([]byte) ([]byte, error)
}

func (m *MockCompressor) Compress(val []byte) ([]byte, error) {
	if m.CompressFn != nil {
		return m.CompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Decompress(val []byte) ([]byte, error) {
	if m.DecompressFn != nil {
		return m.DecompressFn(val)
	}
	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (m *MockCompressor) Close() {}

// MockMetrics implements providers.MetricsProviderInterface and counts calls.
type MockMetrics struct {
	mu             sync.Mutex
	APICalls       map[string]int
	Rotations      int
	Cycles         map[string]int
	Quota          []models.CredentialStatus
	EntitiesTotal  map[string]int
	EntitiesFailed map[string]int
	Persisted      int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		APICalls:       make(map[string]int),
		Cycles:         make(map[string]int),
		EntitiesTotal:  make(map[string]int),
		EntitiesFailed: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Persisted++
}

func (m *MockMetrics) ObserveAPICall(op string, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.APICalls[op+":"+outcome]++
}

func (m *MockMetrics) IncKeyRotations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rotations++
}

func (m *MockMetrics) SetQuota(status []models.CredentialStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Quota = status
}

func (m *MockMetrics) ObserveCycle(mode string, outcome string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cycles[mode+":"+outcome]++
}

func (m *MockMetrics) SetEntitiesTotal(kind string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntitiesTotal[kind] = count
}

func (m *MockMetrics) AddEntitiesFailed(kind string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EntitiesFailed[kind] += count
}

// MockClientFactory hands out MockClients that share the factory's
// behavior and record which key served each call.
type MockClientFactory struct {
	mu sync.Mutex

	ChannelsFn func(ctx context.Context, key string, ids []string) ([]*models.ChannelSnapshot, error)
	VideosFn   func(ctx context.Context, key string, ids []string) ([]*models.VideoSnapshot, error)
	PlaylistFn func(ctx context.Context, key string, playlistID string, max int) ([]string, error)
	SearchFn   func(ctx context.Context, key string, opts youtube.SearchOptions) ([]string, error)

	Calls []MockCall
}

type MockCall struct {
	Method string
	Key    string
	Args   []string
}

func (f *MockClientFactory) ForCredential(cred models.Credential) youtube.Client {
	return &MockClient{factory: f, key: cred.Key}
}

func (f *MockClientFactory) record(method, key string, args []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, MockCall{Method: method, Key: key, Args: append([]string(nil), args...)})
}

// CallsTo returns the recorded calls of one method.
func (f *MockClientFactory) CallsTo(method string) []MockCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []MockCall
	for _, c := range f.Calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

type MockClient struct {
	factory *MockClientFactory
	key     string
}

func (c *MockClient) GetChannels(ctx context.Context, ids []string) ([]*models.ChannelSnapshot, error) {
	c.factory.record("GetChannels", c.key, ids)
	if c.factory.ChannelsFn == nil {
		return nil, nil
	}
	return c.factory.ChannelsFn(ctx, c.key, ids)
}

func (c *MockClient) GetVideos(ctx context.Context, ids []string) ([]*models.VideoSnapshot, error) {
	c.factory.record("GetVideos", c.key, ids)
	if c.factory.VideosFn == nil {
		return nil, nil
	}
	return c.factory.VideosFn(ctx, c.key, ids)
}

func (c *MockClient) GetPlaylistItems(ctx context.Context, playlistID string, max int) ([]string, error) {
	c.factory.record("GetPlaylistItems", c.key, []string{playlistID})
	if c.factory.PlaylistFn == nil {
		return nil, nil
	}
	return c.factory.PlaylistFn(ctx, c.key, playlistID, max)
}

func (c *MockClient) Search(ctx context.Context, opts youtube.SearchOptions) ([]string, error) {
	c.factory.record("Search", c.key, []string{opts.Query})
	if c.factory.SearchFn == nil {
		return nil, nil
	}
	return c.factory.SearchFn(ctx, c.key, opts)
}

// MockFeedSource implements youtube.FeedSourceInterface from a fixed map.
type MockFeedSource struct {
	mu     sync.Mutex
	Videos map[string][]string
	Err    map[string]error
	Calls  []string
}

func (m *MockFeedSource) RecentVideos(_ context.Context, channelID string, max int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, channelID)
	if err := m.Err[channelID]; err != nil {
		return nil, err
	}
	ids := m.Videos[channelID]
	if max > 0 && len(ids) > max {
		ids = ids[:max]
	}
	return ids, nil
}

// MockHandleResolver implements youtube.HandleResolverInterface.
type MockHandleResolver struct {
	Handles map[string]string
}

func (m *MockHandleResolver) Resolve(_ context.Context, handle string) (string, error) {
	if id, ok := m.Handles[handle]; ok {
		return id, nil
	}
	return "", &models.ProviderError{Kind: models.ErrNotFound, Reason: handle}
}
