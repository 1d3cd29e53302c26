package testutil

import (
	"sync"
	"time"

	"ytstat/internal/models"
)

// MockSnapshotStore keeps baselines in memory.
type MockSnapshotStore struct {
	mu       sync.Mutex
	Channels map[string]*models.ChannelSnapshot
	Videos   map[string]*models.VideoSnapshot
	LoadErr  error
	SaveErr  error
	Saves    int
}

func NewMockSnapshotStore() *MockSnapshotStore {
	return &MockSnapshotStore{
		Channels: make(map[string]*models.ChannelSnapshot),
		Videos:   make(map[string]*models.VideoSnapshot),
	}
}

func (m *MockSnapshotStore) LoadChannels() (map[string]*models.ChannelSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	out := make(map[string]*models.ChannelSnapshot, len(m.Channels))
	for id, ch := range m.Channels {
		cp := *ch
		out[id] = &cp
	}
	return out, nil
}

func (m *MockSnapshotStore) LoadVideos() (map[string]*models.VideoSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	out := make(map[string]*models.VideoSnapshot, len(m.Videos))
	for id, v := range m.Videos {
		cp := *v
		out[id] = &cp
	}
	return out, nil
}

func (m *MockSnapshotStore) SaveChannels(channels map[string]*models.ChannelSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saves++
	m.Channels = channels
	return nil
}

func (m *MockSnapshotStore) SaveVideos(videos map[string]*models.VideoSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Saves++
	m.Videos = videos
	return nil
}

// MockDashboard records written results.
type MockDashboard struct {
	mu      sync.Mutex
	Written []*models.CollectionResult
	Stored  *models.CollectionResult
	Err     error
}

func (m *MockDashboard) Write(result *models.CollectionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Written = append(m.Written, result)
	m.Stored = result
	return nil
}

func (m *MockDashboard) Read() (*models.CollectionResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Stored, m.Err
}

// MockHistory keeps reports in memory.
type MockHistory struct {
	mu       sync.Mutex
	Reports  []models.CycleReport
	Flushes  int
	Restores int
}

func (m *MockHistory) Append(report models.CycleReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reports = append(m.Reports, report)
}

func (m *MockHistory) Recent(since time.Time) []models.CycleReport {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.CycleReport, 0, len(m.Reports))
	for _, r := range m.Reports {
		if !r.StartedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out
}

func (m *MockHistory) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Flushes++
	return nil
}

func (m *MockHistory) Restore() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Restores++
	return nil
}
