package youtube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"ytstat/internal/models"
	"ytstat/internal/structures"
)

const (
	DefaultAPIBaseURL = "https://www.googleapis.com/youtube/v3"
	maxErrorBody      = 64 << 10
	maxResponseBody   = 8 << 20
)

type APIClientFactory struct {
	httpClient *http.Client
	baseURL    string
}

func NewAPIClientFactory(conf *structures.Config) *APIClientFactory {
	timeout := conf.Fetcher.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewAPIClientFactoryWith(&http.Client{Timeout: timeout}, conf.Fetcher.APIBaseURL)
}

func NewAPIClientFactoryWith(httpClient *http.Client, baseURL string) *APIClientFactory {
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	return &APIClientFactory{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

func (f *APIClientFactory) ForCredential(cred models.Credential) Client {
	return &APIClient{httpClient: f.httpClient, baseURL: f.baseURL, key: cred.Key}
}

// APIClient is a Data API v3 client bound to one key.
type APIClient struct {
	httpClient *http.Client
	baseURL    string
	key        string
}

func (c *APIClient) GetChannels(ctx context.Context, ids []string) ([]*models.ChannelSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxBatch {
		return nil, fmt.Errorf("channels.list: %d ids exceeds batch limit %d", len(ids), MaxBatch)
	}
	q := url.Values{}
	q.Set("part", "snippet,statistics,contentDetails")
	q.Set("id", strings.Join(ids, ","))
	q.Set("maxResults", strconv.Itoa(MaxBatch))

	var resp apiListResponse
	if err := c.get(ctx, "channels", q, &resp); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	out := make([]*models.ChannelSnapshot, 0, len(resp.Items))
	for _, it := range resp.Items {
		ch := normalizeChannel(it, now)
		if ch.ID == "" {
			continue
		}
		out = append(out, ch)
	}
	return out, nil
}

func (c *APIClient) GetVideos(ctx context.Context, ids []string) ([]*models.VideoSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxBatch {
		return nil, fmt.Errorf("videos.list: %d ids exceeds batch limit %d", len(ids), MaxBatch)
	}
	q := url.Values{}
	q.Set("part", "snippet,statistics,contentDetails")
	q.Set("id", strings.Join(ids, ","))
	q.Set("maxResults", strconv.Itoa(MaxBatch))

	var resp apiListResponse
	if err := c.get(ctx, "videos", q, &resp); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	out := make([]*models.VideoSnapshot, 0, len(resp.Items))
	for _, it := range resp.Items {
		v := normalizeVideo(it, now)
		if v.ID == "" {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// GetPlaylistItems returns up to max video ids from the first page of the
// playlist, newest first for uploads playlists.
func (c *APIClient) GetPlaylistItems(ctx context.Context, playlistID string, max int) ([]string, error) {
	if max <= 0 || max > MaxBatch {
		max = MaxBatch
	}
	q := url.Values{}
	q.Set("part", "contentDetails,snippet")
	q.Set("playlistId", playlistID)
	q.Set("maxResults", strconv.Itoa(max))

	var resp apiListResponse
	if err := c.get(ctx, "playlistItems", q, &resp); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(resp.Items))
	for _, it := range resp.Items {
		if id := playlistVideoID(it); id != "" {
			out = append(out, id)
		}
	}
	return out, nil
}

func (c *APIClient) Search(ctx context.Context, opts SearchOptions) ([]string, error) {
	q := url.Values{}
	q.Set("part", "id")
	q.Set("type", "video")
	q.Set("q", opts.Query)
	max := opts.MaxResults
	if max <= 0 || max > MaxBatch {
		max = MaxBatch
	}
	q.Set("maxResults", strconv.Itoa(max))
	if opts.Order != "" {
		q.Set("order", opts.Order)
	}
	if !opts.PublishedAfter.IsZero() {
		q.Set("publishedAfter", opts.PublishedAfter.UTC().Format(time.RFC3339))
	}
	if opts.RegionCode != "" {
		q.Set("regionCode", opts.RegionCode)
	}
	if opts.Language != "" {
		q.Set("relevanceLanguage", opts.Language)
	}

	var resp apiListResponse
	if err := c.get(ctx, "search", q, &resp); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(resp.Items))
	for _, it := range resp.Items {
		if id := it.itemID(); id != "" {
			out = append(out, id)
		}
	}
	return out, nil
}

func (c *APIClient) get(ctx context.Context, resource string, q url.Values, dst interface{}) error {
	q.Set("key", c.key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+resource+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", resource, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &models.ProviderError{Kind: models.ErrTransient, Reason: resource, Err: redactKey(err, c.key)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return classifyStatus(resource, resp.StatusCode, body)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return &models.ProviderError{Kind: models.ErrTransient, Reason: resource, Err: err}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &models.ProviderError{Kind: models.ErrTransient, Reason: resource, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

type apiErrorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Domain  string `json:"domain"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

var (
	quotaReasons = map[string]bool{
		"quotaExceeded":      true,
		"dailyLimitExceeded": true,
	}
	authReasons = map[string]bool{
		"keyInvalid":          true,
		"keyExpired":          true,
		"accessNotConfigured": true,
		"ipRefererBlocked":    true,
		"API_KEY_INVALID":     true,
	}
	// Refusals scoped to one channel, playlist or video. The key is fine.
	resourceReasons = map[string]bool{
		"forbidden":                  true,
		"channelClosed":              true,
		"channelSuspended":           true,
		"channelNotFound":            true,
		"playlistForbidden":          true,
		"playlistNotFound":           true,
		"playlistItemsNotAccessible": true,
		"videoNotFound":              true,
	}
	transientReasons = map[string]bool{
		"rateLimitExceeded":     true,
		"userRateLimitExceeded": true,
		"backendError":          true,
	}
)

// classifyStatus maps a non-200 response onto the error taxonomy.
// Responses it cannot place are returned as plain errors.
func classifyStatus(resource string, status int, body []byte) error {
	var env apiErrorEnvelope
	_ = json.Unmarshal(body, &env)

	reason := ""
	if len(env.Error.Errors) > 0 {
		reason = env.Error.Errors[0].Reason
	}
	if reason == "" {
		reason = env.Error.Status
	}
	cause := errors.New(strings.TrimSpace(env.Error.Message))
	if env.Error.Message == "" {
		cause = fmt.Errorf("%s: %s", resource, http.StatusText(status))
	}

	pe := &models.ProviderError{Status: status, Reason: reason, Err: cause}
	switch {
	case quotaReasons[reason] && (status == http.StatusForbidden || status == http.StatusTooManyRequests):
		pe.Kind = models.ErrQuotaExceeded
	case transientReasons[reason], status == http.StatusTooManyRequests, status >= 500:
		pe.Kind = models.ErrTransient
	case status == http.StatusUnauthorized, authReasons[reason]:
		pe.Kind = models.ErrAuth
	case status == http.StatusNotFound, resourceReasons[reason] && status == http.StatusForbidden:
		pe.Kind = models.ErrNotFound
	default:
		return fmt.Errorf("%s: unexpected status %d (%s): %w", resource, status, reason, cause)
	}
	return pe
}

func redactKey(err error, key string) error {
	if key == "" {
		return err
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		msg := strings.ReplaceAll(err.Error(), url.QueryEscape(key), "REDACTED")
		msg = strings.ReplaceAll(msg, key, "REDACTED")
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return fmt.Errorf("timeout: %s", msg)
		}
		return errors.New(msg)
	}
	return err
}
