package engine

import (
	"sort"
	"time"

	"ytstat/internal/models"
	"ytstat/internal/structures"
)

// SpikePolicy bounds which videos count as spiking.
type SpikePolicy struct {
	Window   time.Duration
	MinDelta int64
	Limit    int
}

func DefaultSpikePolicy() SpikePolicy {
	return SpikePolicy{Window: 48 * time.Hour, MinDelta: 5000, Limit: 50}
}

func SpikePolicyFromConfig(conf *structures.Config) SpikePolicy {
	p := DefaultSpikePolicy()
	if conf == nil {
		return p
	}
	if conf.Analysis.SpikeWindow > 0 {
		p.Window = conf.Analysis.SpikeWindow
	}
	if conf.Analysis.SpikeMinDelta > 0 {
		p.MinDelta = conf.Analysis.SpikeMinDelta
	}
	if conf.Analysis.SpikeLimit > 0 {
		p.Limit = conf.Analysis.SpikeLimit
	}
	return p
}

// DetectSpikes returns videos published within the window whose view delta
// exceeds MinDelta, fastest first.
func DetectSpikes(videos map[string]*models.VideoSnapshot, deltas map[string]models.VideoDelta, channels map[string]*models.ChannelSnapshot, p SpikePolicy, now time.Time) []models.Spike {
	out := make([]models.Spike, 0)
	for id, v := range videos {
		if v == nil || v.PublishedAt.IsZero() {
			continue
		}
		age := now.Sub(v.PublishedAt)
		if age < 0 || age > p.Window {
			continue
		}
		d, ok := deltas[id]
		if !ok || d.Views.IsNew || d.Views.AbsoluteDelta <= p.MinDelta {
			continue
		}

		spike := models.Spike{
			Video:            v,
			Delta:            d.Views.AbsoluteDelta,
			Rate:             d.Views.Rate,
			ViewsPerHour:     d.ViewsPerHour,
			SpikeRatio:       float64(d.Views.AbsoluteDelta) / float64(max(1, v.ViewCount-d.Views.AbsoluteDelta)),
			HoursSinceUpload: int(age.Hours()),
		}
		if ch, ok := channels[v.ChannelID]; ok && ch != nil {
			spike.ChannelTitle = ch.Title
		}
		out = append(out, spike)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return spikeLess(out[i], out[j])
	})
	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out
}

// spikeLess orders by rate, then by lifetime views per hour when neither
// rate is positive, then by id.
func spikeLess(a, b models.Spike) bool {
	if a.Rate > 0 || b.Rate > 0 {
		if a.Rate != b.Rate {
			return a.Rate > b.Rate
		}
	} else if a.ViewsPerHour != b.ViewsPerHour {
		return a.ViewsPerHour > b.ViewsPerHour
	}
	return a.Video.ID < b.Video.ID
}
