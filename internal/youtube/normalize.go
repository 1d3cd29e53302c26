package youtube

import (
	"strings"
	"time"

	"github.com/spf13/cast"
	"ytstat/internal/classifier"
	"ytstat/internal/models"
)

const descriptionLimit = 200

type apiThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type apiSnippet struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	CustomURL   string                  `json:"customUrl"`
	ChannelID   string                  `json:"channelId"`
	PublishedAt string                  `json:"publishedAt"`
	Thumbnails  map[string]apiThumbnail `json:"thumbnails"`
	ResourceID  struct {
		VideoID string `json:"videoId"`
	} `json:"resourceId"`
}

type apiContentDetails struct {
	Duration         string `json:"duration"`
	VideoID          string `json:"videoId"`
	RelatedPlaylists struct {
		Uploads string `json:"uploads"`
	} `json:"relatedPlaylists"`
}

// Counters arrive as strings from the API and as numbers from older exports,
// so statistics stay loosely typed until normalization.
type apiItem struct {
	ID             interface{}            `json:"id"`
	Snippet        apiSnippet             `json:"snippet"`
	ContentDetails apiContentDetails      `json:"contentDetails"`
	Statistics     map[string]interface{} `json:"statistics"`
}

type apiListResponse struct {
	Items         []apiItem `json:"items"`
	NextPageToken string    `json:"nextPageToken"`
}

// itemID handles both plain ids and the {"kind":..., "videoId":...} objects
// returned by search.
func (it apiItem) itemID() string {
	switch v := it.ID.(type) {
	case string:
		return v
	case map[string]interface{}:
		for _, k := range []string{"videoId", "channelId", "playlistId"} {
			if s := cast.ToString(v[k]); s != "" {
				return s
			}
		}
	}
	return ""
}

func counter(stats map[string]interface{}, names ...string) int64 {
	for _, name := range names {
		if raw, ok := stats[name]; ok && raw != nil {
			n, err := cast.ToInt64E(raw)
			if err == nil && n >= 0 {
				return n
			}
		}
	}
	return 0
}

// bestThumbnail prefers high, then medium, then default resolution.
func bestThumbnail(thumbs map[string]apiThumbnail) apiThumbnail {
	for _, k := range []string{"high", "medium", "default"} {
		if t, ok := thumbs[k]; ok && t.URL != "" {
			return t
		}
	}
	return apiThumbnail{}
}

func truncateRunes(s string, limit int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= limit {
		return string(r)
	}
	return string(r[:limit])
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func normalizeChannel(it apiItem, now time.Time) *models.ChannelSnapshot {
	id := it.itemID()
	uploads := it.ContentDetails.RelatedPlaylists.Uploads
	if uploads == "" {
		uploads = UploadsPlaylist(id)
	}
	return &models.ChannelSnapshot{
		ID:              id,
		Title:           strings.TrimSpace(it.Snippet.Title),
		CustomURL:       it.Snippet.CustomURL,
		SubscriberCount: counter(it.Statistics, "subscriberCount", "subscribers"),
		ViewCount:       counter(it.Statistics, "viewCount", "views"),
		VideoCount:      counter(it.Statistics, "videoCount", "videos"),
		Thumbnail:       bestThumbnail(it.Snippet.Thumbnails).URL,
		UploadsPlaylist: uploads,
		LastFetched:     now,
	}
}

// normalizeVideo fills everything except IsShort, which the classifier owns.
// An unparseable duration is recorded as zero.
func normalizeVideo(it apiItem, now time.Time) *models.VideoSnapshot {
	seconds, _ := classifier.ParseDuration(it.ContentDetails.Duration)
	thumb := bestThumbnail(it.Snippet.Thumbnails)
	return &models.VideoSnapshot{
		ID:              it.itemID(),
		ChannelID:       it.Snippet.ChannelID,
		Title:           strings.TrimSpace(it.Snippet.Title),
		Description:     truncateRunes(it.Snippet.Description, descriptionLimit),
		PublishedAt:     parseTime(it.Snippet.PublishedAt),
		DurationSeconds: seconds,
		ViewCount:       counter(it.Statistics, "viewCount", "views"),
		LikeCount:       counter(it.Statistics, "likeCount", "likes"),
		CommentCount:    counter(it.Statistics, "commentCount", "comments"),
		Thumbnail:       thumb.URL,
		ThumbWidth:      thumb.Width,
		ThumbHeight:     thumb.Height,
		LastFetched:     now,
	}
}

func playlistVideoID(it apiItem) string {
	if it.ContentDetails.VideoID != "" {
		return it.ContentDetails.VideoID
	}
	return it.Snippet.ResourceID.VideoID
}
