// Package aggregate reduces a merged and diffed entity set into the
// dashboard summary and leaderboards.
package aggregate

import (
	"sort"
	"time"

	"ytstat/internal/engine"
	"ytstat/internal/models"
	"ytstat/internal/structures"
)

const (
	RankByDelta = "delta"
	RankByViews = "views"
)

type Options struct {
	TopN         int
	TopVideosBy  string
	Spikes       engine.SpikePolicy
	AboveAverage engine.AboveAveragePolicy
}

func DefaultOptions() Options {
	return Options{
		TopN:         20,
		TopVideosBy:  RankByDelta,
		Spikes:       engine.DefaultSpikePolicy(),
		AboveAverage: engine.DefaultAboveAveragePolicy(),
	}
}

func OptionsFromConfig(conf *structures.Config) Options {
	opts := DefaultOptions()
	if conf == nil {
		return opts
	}
	if conf.Analysis.TopN > 0 {
		opts.TopN = conf.Analysis.TopN
	}
	if conf.Analysis.TopVideosBy != "" {
		opts.TopVideosBy = conf.Analysis.TopVideosBy
	}
	opts.Spikes = engine.SpikePolicyFromConfig(conf)
	opts.AboveAverage = engine.AboveAveragePolicyFromConfig(conf)
	return opts
}

// Input is everything one cycle knows after merge and diff.
type Input struct {
	Channels      map[string]*models.ChannelSnapshot
	Videos        map[string]*models.VideoSnapshot
	ChannelDeltas map[string]models.ChannelDelta
	VideoDeltas   map[string]models.VideoDelta
}

// Summarize builds the Summary. Every ranked list breaks ties on the id so
// equal inputs always produce the same order.
func Summarize(in Input, opts Options, now time.Time) models.Summary {
	s := models.Summary{
		GeneratedAt:   now,
		TotalChannels: len(in.Channels),
		TotalVideos:   len(in.Videos),
	}

	var shortViews int64
	shortsPerChannel := make(map[string]int)
	for _, v := range in.Videos {
		if v == nil {
			continue
		}
		s.TotalViews += v.ViewCount
		s.TotalLikes += v.LikeCount
		s.TotalComments += v.CommentCount
		if v.IsShort {
			s.TotalShorts++
			shortViews += v.ViewCount
			shortsPerChannel[v.ChannelID]++
		} else {
			s.TotalLongForm++
		}
	}
	if s.TotalShorts > 0 {
		s.AvgViewsPerShort = shortViews / int64(s.TotalShorts)
	}

	var growthSum float64
	var growthN int
	for id, ch := range in.Channels {
		if ch == nil {
			continue
		}
		s.TotalChannelViews += ch.ViewCount
		d, ok := in.ChannelDeltas[id]
		if !ok || d.Views.IsNew {
			continue
		}
		s.TotalViewGrowth += d.Views.AbsoluteDelta
		growthSum += d.Views.PercentGrowth
		growthN++
	}
	if growthN > 0 {
		s.AvgGrowthRate = growthSum / float64(growthN)
	}

	s.TopChannels = limit(rankChannels(in.Channels, in.ChannelDeltas, shortsPerChannel), opts.TopN)
	s.TopChannelsByShorts = limit(rankByShorts(in.Channels, in.ChannelDeltas, shortsPerChannel), opts.TopN)
	s.TopVideos = limit(rankVideos(in.Videos, in.VideoDeltas, opts.TopVideosBy), opts.TopN)
	s.Spikes = engine.DetectSpikes(in.Videos, in.VideoDeltas, in.Channels, opts.Spikes, now)
	s.AboveAverage = engine.DetectAboveAverage(in.Videos, in.Channels, opts.AboveAverage)
	return s
}

// Score weighs lifetime views, recent growth and audience size.
func Score(ch *models.ChannelSnapshot, d models.ChannelDelta) float64 {
	return float64(ch.ViewCount)*0.5 + float64(d.Views.AbsoluteDelta)*2 + float64(ch.SubscriberCount)*0.3
}

func channelRank(ch *models.ChannelSnapshot, d models.ChannelDelta, shorts int) models.ChannelRank {
	return models.ChannelRank{
		ID:          ch.ID,
		Title:       ch.Title,
		Score:       Score(ch, d),
		ViewDelta:   d.Views.AbsoluteDelta,
		GrowthRate:  d.Views.PercentGrowth,
		Subscribers: ch.SubscriberCount,
		ShortsCount: shorts,
	}
}

func rankChannels(channels map[string]*models.ChannelSnapshot, deltas map[string]models.ChannelDelta, shorts map[string]int) []models.ChannelRank {
	out := make([]models.ChannelRank, 0, len(channels))
	for id, ch := range channels {
		if ch == nil {
			continue
		}
		out = append(out, channelRank(ch, deltas[id], shorts[id]))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func rankByShorts(channels map[string]*models.ChannelSnapshot, deltas map[string]models.ChannelDelta, shorts map[string]int) []models.ChannelRank {
	out := make([]models.ChannelRank, 0, len(shorts))
	for id, n := range shorts {
		ch, ok := channels[id]
		if !ok || ch == nil || n == 0 {
			continue
		}
		out = append(out, channelRank(ch, deltas[id], n))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ShortsCount != out[j].ShortsCount {
			return out[i].ShortsCount > out[j].ShortsCount
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func rankVideos(videos map[string]*models.VideoSnapshot, deltas map[string]models.VideoDelta, by string) []models.VideoRank {
	out := make([]models.VideoRank, 0, len(videos))
	for id, v := range videos {
		if v == nil {
			continue
		}
		out = append(out, models.VideoRank{
			ID:        v.ID,
			ChannelID: v.ChannelID,
			Title:     v.Title,
			Views:     v.ViewCount,
			ViewDelta: deltas[id].Views.AbsoluteDelta,
			IsShort:   v.IsShort,
		})
	}
	key := func(r models.VideoRank) int64 {
		if by == RankByViews {
			return r.Views
		}
		return r.ViewDelta
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := key(out[i]), key(out[j])
		if ki != kj {
			return ki > kj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func limit[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
