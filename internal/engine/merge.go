// Package engine merges snapshot sets by identity and derives deltas,
// velocity, spikes and above-average performers from them.
package engine

import (
	"time"

	"ytstat/internal/models"
)

// Entity is a snapshot with an identity and a freshness signal.
type Entity interface {
	comparable
	GetID() string
	GetLastFetched() time.Time
	GetViewCount() int64
}

// Merge returns a new map holding existing plus incoming. A record already
// present is replaced only when the incoming one is strictly fresher; see
// Fresher. Neither input is modified.
//
// With timestamps on both sides the outcome does not depend on the order of
// incoming. Without them, equal view counts keep whichever record was
// applied first.
func Merge[T Entity](existing map[string]T, incoming []T) map[string]T {
	var zero T
	out := make(map[string]T, len(existing)+len(incoming))
	for id, e := range existing {
		out[id] = e
	}
	for _, in := range incoming {
		if in == zero || in.GetID() == "" {
			continue
		}
		id := in.GetID()
		cur, ok := out[id]
		if !ok || cur == zero || Fresher(in, cur) {
			out[id] = in
		}
	}
	return out
}

// Fresher reports whether a should replace b: a later LastFetched wins when
// both are stamped, otherwise a strictly higher view count does.
func Fresher[T Entity](a, b T) bool {
	ta, tb := a.GetLastFetched(), b.GetLastFetched()
	if !ta.IsZero() && !tb.IsZero() {
		return ta.After(tb)
	}
	return a.GetViewCount() > b.GetViewCount()
}

// Index keys a slice by identity, applying the same freshness rule to
// duplicates.
func Index[T Entity](items []T) map[string]T {
	return Merge(nil, items)
}

// Prune returns set without the records last fetched before cutoff and the
// number it dropped. Records without a timestamp are kept. set is not
// modified.
func Prune[T Entity](set map[string]T, cutoff time.Time) (map[string]T, int) {
	out := make(map[string]T, len(set))
	for id, e := range set {
		if ts := e.GetLastFetched(); !ts.IsZero() && ts.Before(cutoff) {
			continue
		}
		out[id] = e
	}
	return out, len(set) - len(out)
}

func MergeChannels(existing map[string]*models.ChannelSnapshot, incoming []*models.ChannelSnapshot) map[string]*models.ChannelSnapshot {
	return Merge(existing, incoming)
}

func MergeVideos(existing map[string]*models.VideoSnapshot, incoming []*models.VideoSnapshot) map[string]*models.VideoSnapshot {
	return Merge(existing, incoming)
}
