package targets

import (
	"time"

	"ytstat/internal/models"
	"ytstat/internal/structures"
)

var defaultRefresh = map[string]time.Duration{
	"tier1": 4 * time.Hour,
	"tier2": 12 * time.Hour,
	"tier3": 24 * time.Hour,
}

// Freshness decides whether a channel's baseline is recent enough to skip
// refetching it.
type Freshness struct {
	intervals map[string]time.Duration
	fallback  time.Duration
}

func NewFreshness(conf *structures.Config) Freshness {
	f := Freshness{intervals: make(map[string]time.Duration), fallback: 24 * time.Hour}
	for tier, d := range defaultRefresh {
		f.intervals[tier] = d
	}
	if conf != nil {
		for tier, d := range conf.Collection.TierRefresh {
			if d > 0 {
				f.intervals[tier] = d
			}
		}
	}
	return f
}

func (f Freshness) Interval(tier string) time.Duration {
	if d, ok := f.intervals[tier]; ok {
		return d
	}
	return f.fallback
}

// Due reports whether a channel last fetched at fetched needs refreshing.
func (f Freshness) Due(tier string, fetched, now time.Time) bool {
	if fetched.IsZero() {
		return true
	}
	return now.Sub(fetched) >= f.Interval(tier)
}

// Plan splits the channels of the given tiers into those to fetch and those
// whose baseline is still fresh. Tiers listed in force are always fetched.
func (f Freshness) Plan(set models.TargetSet, tiers, force []string, baseline map[string]*models.ChannelSnapshot, now time.Time) (due, fresh []string) {
	forced := make(map[string]bool, len(force))
	for _, tier := range force {
		forced[tier] = true
	}
	for _, id := range set.Channels(tiers...) {
		tier, _ := set.TierOf(id)
		b, ok := baseline[id]
		if forced[tier] || !ok || b == nil || f.Due(tier, b.LastFetched, now) {
			due = append(due, id)
			continue
		}
		fresh = append(fresh, id)
	}
	return due, fresh
}
