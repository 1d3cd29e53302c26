package controllers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"ytstat/internal/keypool"
	"ytstat/internal/models"
	"ytstat/internal/providers"
	"ytstat/internal/services"
	"ytstat/internal/statistic/interfaces"
	"ytstat/internal/structures"
)

const (
	defaultHistoryHours = 24
	maxHistoryHours     = 7 * 24
)

type DashboardController struct {
	conf      *structures.Config
	logger    providers.Logger
	collector services.CollectorServiceInterface
	scheduler interfaces.SchedulerInterface
	pool      keypool.KeyPoolInterface
	history   interfaces.HistoryStoreInterface
	cache     providers.CacheProviderInterface
}

func NewDashboardController(
	conf *structures.Config,
	logger providers.Logger,
	collector services.CollectorServiceInterface,
	scheduler interfaces.SchedulerInterface,
	pool keypool.KeyPoolInterface,
	history interfaces.HistoryStoreInterface,
	cache providers.CacheProviderInterface,
) *DashboardController {
	return &DashboardController{
		conf:      conf,
		logger:    logger,
		collector: collector,
		scheduler: scheduler,
		pool:      pool,
		history:   history,
		cache:     cache,
	}
}

type dashboardResponse struct {
	CycleID     string            `json:"cycleId"`
	Mode        string            `json:"mode"`
	Outcome     string            `json:"outcome"`
	GeneratedAt time.Time         `json:"generatedAt"`
	Stats       models.CycleStats `json:"stats"`
	Summary     models.Summary    `json:"summary"`
}

type quotaResponse struct {
	Keys        int                       `json:"keys"`
	Available   int                       `json:"available"`
	Used        int64                     `json:"used"`
	Limit       int64                     `json:"limit"`
	Credentials []models.CredentialStatus `json:"credentials"`
}

type channelEntry struct {
	Channel *models.ChannelSnapshot `json:"channel"`
	Tier    string                  `json:"tier,omitempty"`
	Delta   *models.ChannelDelta    `json:"delta,omitempty"`
}

type videoEntry struct {
	Video *models.VideoSnapshot `json:"video"`
	Delta *models.VideoDelta    `json:"delta,omitempty"`
}

type channelDetail struct {
	channelEntry
	Videos []videoEntry `json:"videos"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (dc *DashboardController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := dc.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		dc.logger.Errorf(providers.TypeGet, "Error while computing %s: %s", cacheKey, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	dc.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// latest writes 503 and returns nil while no cycle has been published.
func (dc *DashboardController) latest(w http.ResponseWriter) *models.CollectionResult {
	result := dc.collector.Latest()
	if result == nil {
		http.Error(w, "No collection cycle completed yet", http.StatusServiceUnavailable)
	}
	return result
}

// limitParam reads ?limit=, falling back to def on absence. ok is false on
// a malformed or negative value.
func limitParam(r *http.Request, def int) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, true
	}
	n, err := cast.ToIntE(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func head[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func (dc *DashboardController) Dashboard(w http.ResponseWriter, r *http.Request) {
	result := dc.latest(w)
	if result == nil {
		return
	}
	dc.serveFromCacheOrCompute(w, "dashboard:"+result.CycleID, func() (any, error) {
		return dashboardResponse{
			CycleID:     result.CycleID,
			Mode:        result.Mode,
			Outcome:     result.Outcome(),
			GeneratedAt: result.FinishedAt,
			Stats:       result.Stats,
			Summary:     result.Summary,
		}, nil
	})
}

func (dc *DashboardController) Spikes(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(r, 0)
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	result := dc.latest(w)
	if result == nil {
		return
	}
	dc.serveFromCacheOrCompute(w, "spikes:"+result.CycleID+":"+cast.ToString(limit), func() (any, error) {
		return head(result.Summary.Spikes, limit), nil
	})
}

func (dc *DashboardController) AboveAverage(w http.ResponseWriter, r *http.Request) {
	limit, ok := limitParam(r, 0)
	if !ok {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	result := dc.latest(w)
	if result == nil {
		return
	}
	dc.serveFromCacheOrCompute(w, "above:"+result.CycleID+":"+cast.ToString(limit), func() (any, error) {
		return head(result.Summary.AboveAverage, limit), nil
	})
}

// Quota reports live pool state and is never cached.
func (dc *DashboardController) Quota(w http.ResponseWriter, r *http.Request) {
	status := dc.pool.Status()
	resp := quotaResponse{
		Keys:        dc.pool.Len(),
		Available:   dc.pool.Available(),
		Credentials: status,
	}
	for _, s := range status {
		resp.Used += s.Used
		resp.Limit += s.Limit
	}
	writeJSON(w, http.StatusOK, resp)
}

func (dc *DashboardController) Channels(w http.ResponseWriter, r *http.Request) {
	result := dc.latest(w)
	if result == nil {
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		dc.serveFromCacheOrCompute(w, "channels:"+result.CycleID, func() (any, error) {
			return channelList(result), nil
		})
		return
	}
	if _, ok := result.Channels[id]; !ok {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	dc.serveFromCacheOrCompute(w, "channel:"+result.CycleID+":"+id, func() (any, error) {
		return channelDetailOf(result, id), nil
	})
}

func channelEntryOf(result *models.CollectionResult, id string) channelEntry {
	entry := channelEntry{Channel: result.Channels[id]}
	if d, ok := result.ChannelDeltas[id]; ok {
		entry.Delta = &d
	}
	return entry
}

func channelList(result *models.CollectionResult) []channelEntry {
	ids := make([]string, 0, len(result.Channels))
	for id := range result.Channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]channelEntry, 0, len(ids))
	for _, id := range ids {
		out = append(out, channelEntryOf(result, id))
	}
	return out
}

// channelDetailOf lists the channel's known videos, most viewed first.
func channelDetailOf(result *models.CollectionResult, id string) channelDetail {
	detail := channelDetail{channelEntry: channelEntryOf(result, id), Videos: make([]videoEntry, 0)}
	for vid, v := range result.Videos {
		if v.ChannelID != id {
			continue
		}
		entry := videoEntry{Video: v}
		if d, ok := result.VideoDeltas[vid]; ok {
			entry.Delta = &d
		}
		detail.Videos = append(detail.Videos, entry)
	}
	sort.Slice(detail.Videos, func(i, j int) bool {
		a, b := detail.Videos[i].Video, detail.Videos[j].Video
		if a.ViewCount != b.ViewCount {
			return a.ViewCount > b.ViewCount
		}
		return a.ID < b.ID
	})
	return detail
}

// History returns the cycle reports of the last ?hours= hours (default 24).
func (dc *DashboardController) History(w http.ResponseWriter, r *http.Request) {
	hours := defaultHistoryHours
	if raw := r.URL.Query().Get("hours"); raw != "" {
		n, err := cast.ToIntE(raw)
		if err != nil || n <= 0 {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		hours = min(n, maxHistoryHours)
	}
	since := time.Now().Add(-time.Duration(hours) * time.Hour)
	writeJSON(w, http.StatusOK, dc.history.Recent(since))
}

// Collect starts a cycle in the background and answers 202 right away.
func (dc *DashboardController) Collect(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = dc.conf.Collection.DefaultMode
	}
	known := false
	for _, m := range dc.collector.Modes() {
		if m == mode {
			known = true
			break
		}
	}
	if !known {
		http.Error(w, "Unknown mode", http.StatusBadRequest)
		return
	}
	if dc.collector.Running() {
		http.Error(w, "Collection cycle already running", http.StatusConflict)
		return
	}

	dc.logger.Infof(providers.TypePost, "Manual %s collection requested", mode)
	go dc.runCollect(mode)

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted", "mode": mode})
}

func (dc *DashboardController) runCollect(mode string) {
	timeout := dc.conf.Collection.Interval
	if timeout <= 0 {
		timeout = time.Hour
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := dc.scheduler.Collect(ctx, mode)
	switch {
	case errors.Is(err, services.ErrCycleInProgress):
		dc.logger.Infof(providers.TypePost, "Manual %s collection skipped: %s", mode, err)
	case err != nil:
		dc.logger.Errorf(providers.TypePost, "Manual %s collection failed: %s", mode, err)
	}
	dc.cache.Purge()
}
