package models

import "time"

type EntityKind string

const (
	KindChannels EntityKind = "channels"
	KindVideos   EntityKind = "videos"
)

// ChannelSnapshot is the last known state of a channel.
type ChannelSnapshot struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	CustomURL       string    `json:"customUrl,omitempty"`
	SubscriberCount int64     `json:"subscriberCount"`
	ViewCount       int64     `json:"viewCount"`
	VideoCount      int64     `json:"videoCount"`
	Thumbnail       string    `json:"thumbnail,omitempty"`
	UploadsPlaylist string    `json:"uploads,omitempty"`
	LastFetched     time.Time `json:"lastFetched"`
}

func (c *ChannelSnapshot) GetID() string             { return c.ID }
func (c *ChannelSnapshot) GetLastFetched() time.Time { return c.LastFetched }
func (c *ChannelSnapshot) GetViewCount() int64       { return c.ViewCount }

// VideoSnapshot is the last known state of a video. IsShort is derived from
// DurationSeconds, Title, Description and the thumbnail dimensions and is
// recomputed whenever a snapshot enters the system.
type VideoSnapshot struct {
	ID              string    `json:"videoId"`
	ChannelID       string    `json:"channelId"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	PublishedAt     time.Time `json:"published"`
	DurationSeconds int       `json:"durationInSeconds"`
	ViewCount       int64     `json:"views"`
	LikeCount       int64     `json:"likeCount"`
	CommentCount    int64     `json:"commentCount"`
	Thumbnail       string    `json:"thumbnail,omitempty"`
	ThumbWidth      int       `json:"thumbWidth,omitempty"`
	ThumbHeight     int       `json:"thumbHeight,omitempty"`
	IsShort         bool      `json:"isShorts"`
	FromSearch      bool      `json:"fromSearch,omitempty"`
	LastFetched     time.Time `json:"lastFetched"`
}

func (v *VideoSnapshot) GetID() string             { return v.ID }
func (v *VideoSnapshot) GetLastFetched() time.Time { return v.LastFetched }
func (v *VideoSnapshot) GetViewCount() int64       { return v.ViewCount }

// TargetSet groups channel identities by tier name.
type TargetSet struct {
	Tiers map[string][]string `json:"tiers" yaml:"tiers"`
	Order []string            `json:"order" yaml:"order"`
}

// Channels returns the de-duplicated identities of the given tiers in tier order.
// An empty tier list selects every tier.
func (t TargetSet) Channels(tiers ...string) []string {
	if len(tiers) == 0 {
		tiers = t.Order
	}
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, tier := range tiers {
		for _, id := range t.Tiers[tier] {
			if id == "" {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// TierOf returns the first tier containing id.
func (t TargetSet) TierOf(id string) (string, bool) {
	for _, tier := range t.Order {
		for _, candidate := range t.Tiers[tier] {
			if candidate == id {
				return tier, true
			}
		}
	}
	return "", false
}

var DefaultTiers = []string{"tier1", "tier2", "tier3"}

// SplitTiers assigns ids in order to tier1 (first 20), tier2 (next 30) and
// tier3 (the rest).
func SplitTiers(ids []string) TargetSet {
	set := TargetSet{Tiers: make(map[string][]string, len(DefaultTiers)), Order: append([]string(nil), DefaultTiers...)}
	bounds := []int{20, 50}
	for i, id := range ids {
		tier := DefaultTiers[2]
		switch {
		case i < bounds[0]:
			tier = DefaultTiers[0]
		case i < bounds[1]:
			tier = DefaultTiers[1]
		}
		set.Tiers[tier] = append(set.Tiers[tier], id)
	}
	return set
}
