package models

import "time"

type Spike struct {
	Video            *VideoSnapshot `json:"video"`
	ChannelTitle     string         `json:"channelTitle"`
	Delta            int64          `json:"viewCountDiff"`
	Rate             float64        `json:"rate"`
	ViewsPerHour     float64        `json:"viewsPerHour"`
	SpikeRatio       float64        `json:"spikeRatio"`
	HoursSinceUpload int            `json:"hoursSinceUpload"`
}

type AboveAverage struct {
	Video           *VideoSnapshot `json:"video"`
	ChannelTitle    string         `json:"channelTitle"`
	ChannelAvgViews int64          `json:"channelAvgViews"`
	Uplift          float64        `json:"uplift"`
	Samples         int            `json:"samples"`
}

type ChannelRank struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Score       float64 `json:"score"`
	ViewDelta   int64   `json:"viewCountDiff"`
	GrowthRate  float64 `json:"growthRate"`
	Subscribers int64   `json:"subscriberCount"`
	ShortsCount int     `json:"shortsCount,omitempty"`
}

type VideoRank struct {
	ID        string `json:"videoId"`
	ChannelID string `json:"channelId"`
	Title     string `json:"title"`
	Views     int64  `json:"views"`
	ViewDelta int64  `json:"viewCountDiff"`
	IsShort   bool   `json:"isShorts"`
}

// Summary is the dashboard-facing reduction of one collection cycle.
type Summary struct {
	GeneratedAt         time.Time      `json:"generatedAt"`
	TotalChannels       int            `json:"totalChannels"`
	TotalVideos         int            `json:"totalVideos"`
	TotalShorts         int            `json:"totalShorts"`
	TotalLongForm       int            `json:"totalLongForm"`
	TotalViews          int64          `json:"totalViews"`
	TotalChannelViews   int64          `json:"totalChannelViews"`
	TotalLikes          int64          `json:"totalLikes"`
	TotalComments       int64          `json:"totalComments"`
	TotalViewGrowth     int64          `json:"totalViewGrowth"`
	AvgGrowthRate       float64        `json:"avgGrowthRate"`
	AvgViewsPerShort    int64          `json:"averageViewsPerShort"`
	TopChannels         []ChannelRank  `json:"topChannels"`
	TopChannelsByShorts []ChannelRank  `json:"topChannelsByShorts"`
	TopVideos           []VideoRank    `json:"topVideos"`
	Spikes              []Spike        `json:"spikes"`
	AboveAverage        []AboveAverage `json:"aboveAverage"`
}

type CycleStats struct {
	ChannelsRequested int   `json:"channelsRequested"`
	ChannelsSucceeded int   `json:"channelsSucceeded"`
	ChannelsFailed    int   `json:"channelsFailed"`
	ChannelsSkipped   int   `json:"channelsSkipped"`
	DiscoveryFailed   int   `json:"discoveryFailed"`
	SearchesFailed    int   `json:"searchesFailed"`
	VideosRequested   int   `json:"videosRequested"`
	VideosSucceeded   int   `json:"videosSucceeded"`
	VideosFailed      int   `json:"videosFailed"`
	VideosPruned      int   `json:"videosPruned"`
	QuotaUsed         int64 `json:"quotaUsed"`
}

// Dropped is the number of entities or operations the cycle gave up on.
func (s CycleStats) Dropped() int {
	return s.ChannelsFailed + s.DiscoveryFailed + s.SearchesFailed + s.VideosFailed
}

// CollectionResult is the outcome of one collection cycle.
type CollectionResult struct {
	CycleID       string                      `json:"cycleId"`
	Mode          string                      `json:"mode"`
	StartedAt     time.Time                   `json:"startedAt"`
	FinishedAt    time.Time                   `json:"finishedAt"`
	Channels      map[string]*ChannelSnapshot `json:"channels"`
	Videos        map[string]*VideoSnapshot   `json:"videos"`
	ChannelDeltas map[string]ChannelDelta     `json:"channelDeltas"`
	VideoDeltas   map[string]VideoDelta       `json:"videoDeltas"`
	Summary       Summary                     `json:"summary"`
	Stats         CycleStats                  `json:"stats"`
	Quota         []CredentialStatus          `json:"quota"`
	Fatal         bool                        `json:"fatal"`
	Cause         string                      `json:"cause,omitempty"`
}

const (
	OutcomeOK      = "ok"
	OutcomePartial = "partial"
	OutcomeFatal   = "fatal"
)

// Outcome is ok when nothing failed, partial when some channels, discovery
// lookups, searches or videos were dropped and fatal when the cycle was
// aborted.
func (r *CollectionResult) Outcome() string {
	switch {
	case r.Fatal:
		return OutcomeFatal
	case r.Stats.Dropped() > 0:
		return OutcomePartial
	default:
		return OutcomeOK
	}
}

// CycleReport is the compact record of one cycle kept in the history.
type CycleReport struct {
	CycleID    string             `json:"cycleId"`
	Mode       string             `json:"mode"`
	StartedAt  time.Time          `json:"startedAt"`
	FinishedAt time.Time          `json:"finishedAt"`
	Outcome    string             `json:"outcome"`
	Cause      string             `json:"cause,omitempty"`
	Stats      CycleStats         `json:"stats"`
	Quota      []CredentialStatus `json:"quota"`
}

func (r *CollectionResult) Report() CycleReport {
	return CycleReport{
		CycleID:    r.CycleID,
		Mode:       r.Mode,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Outcome:    r.Outcome(),
		Cause:      r.Cause,
		Stats:      r.Stats,
		Quota:      r.Quota,
	}
}
