package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"ytstat/internal/models"
	"ytstat/internal/structures"
)

const DefaultSiteBaseURL = "https://www.youtube.com"

var channelIDRE = regexp.MustCompile(`^UC[0-9A-Za-z_-]{22}$`)

// IsChannelID reports whether s already is a canonical channel id.
func IsChannelID(s string) bool {
	return channelIDRE.MatchString(s)
}

// HandleResolver resolves @handles through the public channel page, which
// costs no quota.
type HandleResolver struct {
	httpClient *http.Client
	baseURL    string
}

func NewHandleResolver(conf *structures.Config) *HandleResolver {
	timeout := conf.Fetcher.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewHandleResolverWith(&http.Client{Timeout: timeout}, conf.Fetcher.SiteBaseURL)
}

func NewHandleResolverWith(httpClient *http.Client, baseURL string) *HandleResolver {
	if baseURL == "" {
		baseURL = DefaultSiteBaseURL
	}
	return &HandleResolver{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

func (r *HandleResolver) Resolve(ctx context.Context, handle string) (string, error) {
	handle = strings.TrimSpace(handle)
	if IsChannelID(handle) {
		return handle, nil
	}
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/"+handle, nil)
	if err != nil {
		return "", fmt.Errorf("build handle request: %w", err)
	}
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en;q=0.8")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &models.ProviderError{Kind: models.ErrTransient, Reason: "handle", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", &models.ProviderError{Kind: models.ErrNotFound, Status: resp.StatusCode, Reason: handle}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &models.ProviderError{Kind: models.ErrTransient, Status: resp.StatusCode, Reason: handle}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("parse channel page %s: %w", handle, err)
	}

	if id := channelIDFromDocument(doc); id != "" {
		return id, nil
	}
	return "", &models.ProviderError{Kind: models.ErrNotFound, Reason: handle, Err: fmt.Errorf("no channel id on page")}
}

func channelIDFromDocument(doc *goquery.Document) string {
	if v, ok := doc.Find(`meta[itemprop="channelId"]`).Attr("content"); ok && IsChannelID(v) {
		return v
	}
	if v, ok := doc.Find(`meta[itemprop="identifier"]`).Attr("content"); ok && IsChannelID(v) {
		return v
	}

	var id string
	doc.Find(`link[rel="canonical"], meta[property="og:url"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw, ok := s.Attr("href")
		if !ok {
			raw, _ = s.Attr("content")
		}
		if i := strings.Index(raw, "/channel/"); i >= 0 {
			candidate := strings.Trim(raw[i+len("/channel/"):], "/")
			if IsChannelID(candidate) {
				id = candidate
				return false
			}
		}
		return true
	})
	return id
}
