package aggregate

import (
	"sort"

	"ytstat/internal/models"
)

// RankTiers proposes a tier assignment by Score: the best 20 channels go to
// tier1, the next 30 to tier2, the rest to tier3.
func RankTiers(channels map[string]*models.ChannelSnapshot, deltas map[string]models.ChannelDelta) models.TargetSet {
	ranked := rankChannels(channels, deltas, nil)
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.ID
	}
	return models.SplitTiers(ids)
}

// Reassignments lists the channels whose proposed tier differs from their
// current one, keyed by id with the proposed tier as value.
func Reassignments(current, proposed models.TargetSet) map[string]string {
	out := make(map[string]string)
	for _, id := range proposed.Channels() {
		want, _ := proposed.TierOf(id)
		have, ok := current.TierOf(id)
		if !ok || have != want {
			out[id] = want
		}
	}
	return out
}

// Moves renders Reassignments in a stable order for logging.
func Moves(changes map[string]string) []string {
	out := make([]string, 0, len(changes))
	for id, tier := range changes {
		out = append(out, id+"->"+tier)
	}
	sort.Strings(out)
	return out
}
