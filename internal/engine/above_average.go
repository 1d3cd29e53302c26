package engine

import (
	"sort"

	"ytstat/internal/models"
	"ytstat/internal/structures"
)

type AboveAveragePolicy struct {
	// MinSamples counts the other videos the leave-one-out mean is taken
	// over, so a channel needs MinSamples+1 known videos before any of them
	// is judged.
	MinSamples int
	Multiplier float64
	MinViews   int64
	Limit      int
}

func DefaultAboveAveragePolicy() AboveAveragePolicy {
	return AboveAveragePolicy{MinSamples: 5, Multiplier: 1.5, MinViews: 500, Limit: 30}
}

func AboveAveragePolicyFromConfig(conf *structures.Config) AboveAveragePolicy {
	p := DefaultAboveAveragePolicy()
	if conf == nil {
		return p
	}
	a := conf.Analysis
	if a.AboveAverageMinSamples > 0 {
		p.MinSamples = a.AboveAverageMinSamples
	}
	if a.AboveAverageMultiplier > 0 {
		p.Multiplier = a.AboveAverageMultiplier
	}
	if a.AboveAverageMinViews > 0 {
		p.MinViews = a.AboveAverageMinViews
	}
	if a.AboveAverageLimit > 0 {
		p.Limit = a.AboveAverageLimit
	}
	return p
}

// DetectAboveAverage flags videos beating Multiplier times the mean of the
// other known videos of their channel. A channel needs at least MinSamples
// other videos before any of its videos is judged.
func DetectAboveAverage(videos map[string]*models.VideoSnapshot, channels map[string]*models.ChannelSnapshot, p AboveAveragePolicy) []models.AboveAverage {
	byChannel := make(map[string][]*models.VideoSnapshot)
	for _, v := range videos {
		if v == nil || v.ChannelID == "" {
			continue
		}
		byChannel[v.ChannelID] = append(byChannel[v.ChannelID], v)
	}

	out := make([]models.AboveAverage, 0)
	for channelID, list := range byChannel {
		others := len(list) - 1
		if others < p.MinSamples || others <= 0 {
			continue
		}
		var sum int64
		for _, v := range list {
			sum += v.ViewCount
		}

		title := ""
		if ch, ok := channels[channelID]; ok && ch != nil {
			title = ch.Title
		}

		for _, v := range list {
			mean := float64(sum-v.ViewCount) / float64(others)
			if mean <= 0 {
				continue
			}
			views := float64(v.ViewCount)
			if views <= p.Multiplier*mean || v.ViewCount <= p.MinViews {
				continue
			}
			out = append(out, models.AboveAverage{
				Video:           v,
				ChannelTitle:    title,
				ChannelAvgViews: int64(mean),
				Uplift:          views / mean,
				Samples:         others,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Uplift != out[j].Uplift {
			return out[i].Uplift > out[j].Uplift
		}
		return out[i].Video.ID < out[j].Video.ID
	})
	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out
}
