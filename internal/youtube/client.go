// Package youtube adapts the YouTube Data API v3, the public channel feeds
// and the public channel pages to the strict entity schema in models.
package youtube

import (
	"context"
	"time"

	"ytstat/internal/models"
)

// MaxBatch is the largest id list a single list call accepts.
const MaxBatch = 50

type SearchOptions struct {
	Query          string
	MaxResults     int
	Order          string
	PublishedAfter time.Time
	RegionCode     string
	Language       string
}

// Client is the video/channel data provider bound to one credential.
// Every method is one billable call.
type Client interface {
	GetChannels(ctx context.Context, ids []string) ([]*models.ChannelSnapshot, error)
	GetVideos(ctx context.Context, ids []string) ([]*models.VideoSnapshot, error)
	GetPlaylistItems(ctx context.Context, playlistID string, max int) ([]string, error)
	Search(ctx context.Context, opts SearchOptions) ([]string, error)
}

type ClientFactory interface {
	ForCredential(cred models.Credential) Client
}

// FeedSourceInterface lists recent uploads without spending quota.
type FeedSourceInterface interface {
	RecentVideos(ctx context.Context, channelID string, max int) ([]string, error)
}

// HandleResolverInterface turns an @handle into a channel id.
type HandleResolverInterface interface {
	Resolve(ctx context.Context, handle string) (string, error)
}

// UploadsPlaylist derives the uploads playlist id from a channel id.
func UploadsPlaylist(channelID string) string {
	if len(channelID) > 2 && channelID[:2] == "UC" {
		return "UU" + channelID[2:]
	}
	return ""
}
