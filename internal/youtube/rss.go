package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"ytstat/internal/models"
	"ytstat/internal/structures"
)

const DefaultFeedBaseURL = "https://www.youtube.com/feeds/videos.xml"

// FeedSource reads the public Atom feed of a channel. The feed holds the
// latest 15 uploads and costs no quota.
type FeedSource struct {
	httpClient *http.Client
	baseURL    string
}

func NewFeedSource(conf *structures.Config) *FeedSource {
	timeout := conf.Fetcher.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewFeedSourceWith(&http.Client{Timeout: timeout}, conf.Fetcher.FeedBaseURL)
}

func NewFeedSourceWith(httpClient *http.Client, baseURL string) *FeedSource {
	if baseURL == "" {
		baseURL = DefaultFeedBaseURL
	}
	return &FeedSource{httpClient: httpClient, baseURL: baseURL}
}

func (s *FeedSource) RecentVideos(ctx context.Context, channelID string, max int) ([]string, error) {
	feedURL := s.baseURL + "?channel_id=" + url.QueryEscape(channelID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &models.ProviderError{Kind: models.ErrTransient, Reason: "feed", Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &models.ProviderError{Kind: models.ErrNotFound, Status: resp.StatusCode, Reason: "feed"}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &models.ProviderError{Kind: models.ErrTransient, Status: resp.StatusCode, Reason: "feed"}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("feed %s: unexpected status %d", channelID, resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &models.ProviderError{Kind: models.ErrTransient, Reason: "feed", Err: fmt.Errorf("parse feed %s: %w", channelID, err)}
	}

	out := make([]string, 0, len(feed.Items))
	for _, it := range feed.Items {
		id := feedVideoID(it)
		if id == "" {
			continue
		}
		out = append(out, id)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out, nil
}

// feedVideoID reads yt:videoId, falling back to the watch link and the
// "yt:video:" guid.
func feedVideoID(it *gofeed.Item) string {
	if it == nil {
		return ""
	}
	if yt, ok := it.Extensions["yt"]; ok {
		if vals := yt["videoId"]; len(vals) > 0 && vals[0].Value != "" {
			return strings.TrimSpace(vals[0].Value)
		}
	}
	if it.Link != "" {
		if u, err := url.Parse(it.Link); err == nil {
			if v := u.Query().Get("v"); v != "" {
				return v
			}
			if strings.HasPrefix(u.Path, "/shorts/") {
				return strings.TrimPrefix(u.Path, "/shorts/")
			}
		}
	}
	if strings.HasPrefix(it.GUID, "yt:video:") {
		return strings.TrimPrefix(it.GUID, "yt:video:")
	}
	return ""
}
