package engine

import (
	"time"

	"ytstat/internal/models"
)

// Observation is one value of a metric and when it was taken.
type Observation struct {
	Value int64
	At    time.Time
}

// Diff compares current against baseline. A missing baseline yields a zero
// delta flagged IsNew. Elapsed time is floored at one hour; a baseline
// without a timestamp counts as one hour old.
func Diff(current Observation, baseline *Observation, now time.Time) models.DeltaRecord {
	if baseline == nil {
		return models.DeltaRecord{
			Current:  current.Value,
			Previous: current.Value,
			IsNew:    true,
		}
	}

	delta := current.Value - baseline.Value
	elapsed := 1.0
	if !baseline.At.IsZero() {
		elapsed = max(1.0, now.Sub(baseline.At).Hours())
	}

	rec := models.DeltaRecord{
		Current:       current.Value,
		Previous:      baseline.Value,
		AbsoluteDelta: delta,
		ElapsedHours:  elapsed,
		Rate:          float64(delta) / elapsed,
	}
	if baseline.Value > 0 {
		rec.PercentGrowth = float64(delta) / float64(baseline.Value) * 100
	}
	return rec
}

// ViewsPerHour is lifetime views divided by hours since publication, with
// the same one hour floor. Unknown publication time yields zero.
func ViewsPerHour(v *models.VideoSnapshot, now time.Time) float64 {
	if v == nil || v.PublishedAt.IsZero() {
		return 0
	}
	hours := max(1.0, now.Sub(v.PublishedAt).Hours())
	return float64(v.ViewCount) / hours
}

// EngagementRate is likes plus comments per hundred views.
func EngagementRate(v *models.VideoSnapshot) float64 {
	if v == nil || v.ViewCount <= 0 {
		return 0
	}
	return float64(v.LikeCount+v.CommentCount) / float64(v.ViewCount) * 100
}

func observe(value int64, at time.Time) Observation {
	return Observation{Value: value, At: at}
}

func DiffChannel(current, baseline *models.ChannelSnapshot, now time.Time) models.ChannelDelta {
	d := models.ChannelDelta{ID: current.ID}
	if baseline == nil {
		d.Views = Diff(observe(current.ViewCount, current.LastFetched), nil, now)
		d.Subscribers = Diff(observe(current.SubscriberCount, current.LastFetched), nil, now)
		d.Videos = Diff(observe(current.VideoCount, current.LastFetched), nil, now)
		return d
	}
	d.Views = Diff(observe(current.ViewCount, current.LastFetched), &Observation{baseline.ViewCount, baseline.LastFetched}, now)
	d.Subscribers = Diff(observe(current.SubscriberCount, current.LastFetched), &Observation{baseline.SubscriberCount, baseline.LastFetched}, now)
	d.Videos = Diff(observe(current.VideoCount, current.LastFetched), &Observation{baseline.VideoCount, baseline.LastFetched}, now)
	return d
}

func DiffVideo(current, baseline *models.VideoSnapshot, now time.Time) models.VideoDelta {
	d := models.VideoDelta{
		ID:             current.ID,
		ViewsPerHour:   ViewsPerHour(current, now),
		EngagementRate: EngagementRate(current),
	}
	if baseline == nil {
		d.Views = Diff(observe(current.ViewCount, current.LastFetched), nil, now)
	} else {
		d.Views = Diff(observe(current.ViewCount, current.LastFetched), &Observation{baseline.ViewCount, baseline.LastFetched}, now)
	}
	return d
}

// ChannelDeltas diffs every current channel against its baseline entry.
func ChannelDeltas(current, baseline map[string]*models.ChannelSnapshot, now time.Time) map[string]models.ChannelDelta {
	out := make(map[string]models.ChannelDelta, len(current))
	for id, ch := range current {
		out[id] = DiffChannel(ch, baseline[id], now)
	}
	return out
}

func VideoDeltas(current, baseline map[string]*models.VideoSnapshot, now time.Time) map[string]models.VideoDelta {
	out := make(map[string]models.VideoDelta, len(current))
	for id, v := range current {
		out[id] = DiffVideo(v, baseline[id], now)
	}
	return out
}
