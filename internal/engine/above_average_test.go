package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytstat/internal/models"
	"ytstat/internal/structures"
)

func channelVideos(channelID string, views ...int64) map[string]*models.VideoSnapshot {
	out := make(map[string]*models.VideoSnapshot, len(views))
	for i, v := range views {
		id := fmt.Sprintf("%s-v%d", channelID, i)
		out[id] = &models.VideoSnapshot{ID: id, ChannelID: channelID, ViewCount: v}
	}
	return out
}

func TestDetectAboveAverage_Uplift(t *testing.T) {
	videos := channelVideos("UC1", 100, 200, 300, 400, 500, 700)
	channels := map[string]*models.ChannelSnapshot{"UC1": {ID: "UC1", Title: "채널"}}

	found := DetectAboveAverage(videos, channels, DefaultAboveAveragePolicy())

	require.Len(t, found, 1)
	assert.Equal(t, "UC1-v5", found[0].Video.ID)
	assert.Equal(t, int64(300), found[0].ChannelAvgViews)
	assert.InDelta(t, 2.333, found[0].Uplift, 0.001)
	assert.Equal(t, 5, found[0].Samples)
	assert.Equal(t, "채널", found[0].ChannelTitle)
}

func TestDetectAboveAverage_TooFewSamples(t *testing.T) {
	videos := channelVideos("UC1", 100, 200, 300, 400, 5000)
	assert.Empty(t, DetectAboveAverage(videos, nil, DefaultAboveAveragePolicy()))
}

func TestDetectAboveAverage_NeedsMinSamplesPlusOneVideos(t *testing.T) {
	p := DefaultAboveAveragePolicy()
	p.MinSamples = 3

	assert.Empty(t, DetectAboveAverage(channelVideos("UC1", 100, 100, 5000), nil, p), "two others are not enough")

	found := DetectAboveAverage(channelVideos("UC1", 100, 100, 100, 5000), nil, p)
	require.Len(t, found, 1)
	assert.Equal(t, 3, found[0].Samples)
}

func TestDetectAboveAverage_AbsoluteFloor(t *testing.T) {
	videos := channelVideos("UC1", 10, 20, 30, 40, 50, 400)
	assert.Empty(t, DetectAboveAverage(videos, nil, DefaultAboveAveragePolicy()))

	lowFloor := DefaultAboveAveragePolicy()
	lowFloor.MinViews = 100
	assert.Len(t, DetectAboveAverage(videos, nil, lowFloor), 1)
}

func TestDetectAboveAverage_ZeroMean(t *testing.T) {
	videos := channelVideos("UC1", 0, 0, 0, 0, 0, 9000)
	assert.Empty(t, DetectAboveAverage(videos, nil, DefaultAboveAveragePolicy()))
}

func TestDetectAboveAverage_SortedByUplift(t *testing.T) {
	videos := channelVideos("UC1", 100, 100, 100, 100, 100, 1000)
	for id, v := range channelVideos("UC2", 100, 100, 100, 100, 100, 3000) {
		videos[id] = v
	}

	found := DetectAboveAverage(videos, nil, DefaultAboveAveragePolicy())

	require.Len(t, found, 2)
	assert.Equal(t, "UC2-v5", found[0].Video.ID)
	assert.Equal(t, "UC1-v5", found[1].Video.ID)

	limited := DefaultAboveAveragePolicy()
	limited.Limit = 1
	assert.Len(t, DetectAboveAverage(videos, nil, limited), 1)
}

func TestAboveAveragePolicyFromConfig(t *testing.T) {
	conf := &structures.Config{Analysis: structures.AnalysisConfig{AboveAverageMultiplier: 2, AboveAverageMinViews: 10000}}
	p := AboveAveragePolicyFromConfig(conf)
	assert.Equal(t, 2.0, p.Multiplier)
	assert.Equal(t, int64(10000), p.MinViews)
	assert.Equal(t, 5, p.MinSamples)
}
