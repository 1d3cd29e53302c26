package controllers

import (
	"context"
	"time"

	"go.uber.org/atomic"

	"ytstat/internal/keypool"
	"ytstat/internal/models"
	"ytstat/internal/testutil"
)

type fakeCollector struct {
	latest  *models.CollectionResult
	report  *models.CycleReport
	running atomic.Bool
}

func (f *fakeCollector) RunCollectionCycle(_ context.Context, _ models.TargetSet, _ string) (*models.CollectionResult, error) {
	return f.latest, nil
}
func (f *fakeCollector) Latest() *models.CollectionResult { return f.latest }
func (f *fakeCollector) LastReport() *models.CycleReport  { return f.report }
func (f *fakeCollector) Publish(result *models.CollectionResult) {
	f.latest = result
	report := result.Report()
	f.report = &report
}
func (f *fakeCollector) Running() bool   { return f.running.Load() }
func (f *fakeCollector) Modes() []string { return []string{"full", "light", "rss"} }

type fakeScheduler struct {
	modes chan string
	err   error
}

func (f *fakeScheduler) Init()          {}
func (f *fakeScheduler) Stop()          {}
func (f *fakeScheduler) Restore() error { return nil }
func (f *fakeScheduler) Persist() error { return nil }
func (f *fakeScheduler) Rollover()      {}
func (f *fakeScheduler) Collect(_ context.Context, mode string) (*models.CollectionResult, error) {
	f.modes <- mode
	return nil, f.err
}

func newTestPool(limit int64, ids ...string) *keypool.KeyPool {
	keys := make([]keypool.NamedKey, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, keypool.NamedKey{ID: id, Key: "secret-" + id})
	}
	return keypool.NewKeyPool(keypool.Options{DailyLimit: limit}, &testutil.MockLogger{}, keys...)
}

func sampleResult() *models.CollectionResult {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &models.CollectionResult{
		CycleID:    "cycle-1",
		Mode:       "light",
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
		Channels: map[string]*models.ChannelSnapshot{
			"chB": {ID: "chB", Title: "B", ViewCount: 2000},
			"chA": {ID: "chA", Title: "A", ViewCount: 1000},
		},
		Videos: map[string]*models.VideoSnapshot{
			"v1": {ID: "v1", ChannelID: "chA", ViewCount: 100},
			"v2": {ID: "v2", ChannelID: "chA", ViewCount: 900},
			"v3": {ID: "v3", ChannelID: "chB", ViewCount: 50},
		},
		ChannelDeltas: map[string]models.ChannelDelta{
			"chA": {ID: "chA", Views: models.DeltaRecord{Current: 1000, Previous: 800, AbsoluteDelta: 200}},
		},
		VideoDeltas: map[string]models.VideoDelta{
			"v2": {ID: "v2", Views: models.DeltaRecord{Current: 900, Previous: 400, AbsoluteDelta: 500}},
		},
		Summary: models.Summary{
			TotalChannels: 2,
			TotalVideos:   3,
			Spikes: []models.Spike{
				{Video: &models.VideoSnapshot{ID: "v2"}, Delta: 500},
				{Video: &models.VideoSnapshot{ID: "v1"}, Delta: 80},
			},
			AboveAverage: []models.AboveAverage{
				{Video: &models.VideoSnapshot{ID: "v2"}, Uplift: 2.5},
			},
		},
		Stats: models.CycleStats{ChannelsRequested: 2, ChannelsSucceeded: 2},
	}
}
