package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytstat/internal/models"
	"ytstat/internal/structures"
)

var now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixture() Input {
	return Input{
		Channels: map[string]*models.ChannelSnapshot{
			"UCa": {ID: "UCa", Title: "A", ViewCount: 1000, SubscriberCount: 100},
			"UCb": {ID: "UCb", Title: "B", ViewCount: 1000, SubscriberCount: 100},
			"UCc": {ID: "UCc", Title: "C", ViewCount: 5000, SubscriberCount: 10},
		},
		Videos: map[string]*models.VideoSnapshot{
			"v1": {ID: "v1", ChannelID: "UCa", ViewCount: 100, LikeCount: 10, CommentCount: 1, IsShort: true},
			"v2": {ID: "v2", ChannelID: "UCa", ViewCount: 300, LikeCount: 20, CommentCount: 2, IsShort: true},
			"v3": {ID: "v3", ChannelID: "UCb", ViewCount: 900, LikeCount: 30, CommentCount: 3},
			"v4": {ID: "v4", ChannelID: "UCc", ViewCount: 900, IsShort: true},
		},
		ChannelDeltas: map[string]models.ChannelDelta{
			"UCa": {ID: "UCa", Views: models.DeltaRecord{AbsoluteDelta: 100, PercentGrowth: 10}},
			"UCb": {ID: "UCb", Views: models.DeltaRecord{AbsoluteDelta: 100, PercentGrowth: 30}},
			"UCc": {ID: "UCc", Views: models.DeltaRecord{IsNew: true}},
		},
		VideoDeltas: map[string]models.VideoDelta{
			"v1": {Views: models.DeltaRecord{AbsoluteDelta: 50}},
			"v2": {Views: models.DeltaRecord{AbsoluteDelta: 50}},
			"v3": {Views: models.DeltaRecord{AbsoluteDelta: 10}},
			"v4": {Views: models.DeltaRecord{IsNew: true}},
		},
	}
}

func TestSummarize_Totals(t *testing.T) {
	s := Summarize(fixture(), DefaultOptions(), now)

	assert.Equal(t, now, s.GeneratedAt)
	assert.Equal(t, 3, s.TotalChannels)
	assert.Equal(t, 4, s.TotalVideos)
	assert.Equal(t, 3, s.TotalShorts)
	assert.Equal(t, 1, s.TotalLongForm)
	assert.Equal(t, int64(2200), s.TotalViews)
	assert.Equal(t, int64(7000), s.TotalChannelViews)
	assert.Equal(t, int64(60), s.TotalLikes)
	assert.Equal(t, int64(6), s.TotalComments)
	assert.Equal(t, int64(200), s.TotalViewGrowth)
	assert.InDelta(t, 20.0, s.AvgGrowthRate, 1e-9)
	assert.Equal(t, int64(433), s.AvgViewsPerShort)
}

func TestSummarize_DeterministicTieBreak(t *testing.T) {
	for i := 0; i < 20; i++ {
		s := Summarize(fixture(), DefaultOptions(), now)

		require.Len(t, s.TopChannels, 3)
		assert.Equal(t, "UCc", s.TopChannels[0].ID)
		assert.Equal(t, "UCa", s.TopChannels[1].ID, "equal scores sort by id")
		assert.Equal(t, "UCb", s.TopChannels[2].ID)

		require.Len(t, s.TopVideos, 4)
		assert.Equal(t, []string{"v1", "v2", "v3", "v4"}, videoIDs(s.TopVideos))

		require.Len(t, s.TopChannelsByShorts, 2)
		assert.Equal(t, "UCa", s.TopChannelsByShorts[0].ID)
		assert.Equal(t, 2, s.TopChannelsByShorts[0].ShortsCount)
	}
}

func TestSummarize_TopVideosByViews(t *testing.T) {
	opts := DefaultOptions()
	opts.TopVideosBy = RankByViews
	opts.TopN = 2

	s := Summarize(fixture(), opts, now)

	assert.Equal(t, []string{"v3", "v4"}, videoIDs(s.TopVideos))
	assert.Len(t, s.TopChannels, 2)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(Input{}, DefaultOptions(), now)

	assert.Zero(t, s.TotalVideos)
	assert.Zero(t, s.AvgViewsPerShort)
	assert.Zero(t, s.AvgGrowthRate)
	assert.Empty(t, s.TopChannels)
	assert.NotNil(t, s.Spikes)
	assert.NotNil(t, s.AboveAverage)
}

func TestSummarize_IncludesAboveAverage(t *testing.T) {
	in := Input{Videos: map[string]*models.VideoSnapshot{}}
	for i, views := range []int64{100, 200, 300, 400, 500, 700} {
		id := fmt.Sprintf("v%d", i)
		in.Videos[id] = &models.VideoSnapshot{ID: id, ChannelID: "UC1", ViewCount: views}
	}

	s := Summarize(in, DefaultOptions(), now)

	require.Len(t, s.AboveAverage, 1)
	assert.Equal(t, "v5", s.AboveAverage[0].Video.ID)
}

func TestOptionsFromConfig(t *testing.T) {
	conf := &structures.Config{Analysis: structures.AnalysisConfig{TopN: 5, TopVideosBy: RankByViews, SpikeMinDelta: 10000}}
	opts := OptionsFromConfig(conf)

	assert.Equal(t, 5, opts.TopN)
	assert.Equal(t, RankByViews, opts.TopVideosBy)
	assert.Equal(t, int64(10000), opts.Spikes.MinDelta)
	assert.Equal(t, DefaultOptions(), OptionsFromConfig(nil))
}

func videoIDs(ranks []models.VideoRank) []string {
	out := make([]string, len(ranks))
	for i, r := range ranks {
		out[i] = r.ID
	}
	return out
}
