package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"ytstat/internal/aggregate"
	"ytstat/internal/classifier"
	"ytstat/internal/engine"
	"ytstat/internal/fetcher"
	"ytstat/internal/keypool"
	"ytstat/internal/models"
	"ytstat/internal/providers"
	"ytstat/internal/statistic/interfaces"
	"ytstat/internal/structures"
	"ytstat/internal/targets"
	"ytstat/internal/youtube"
)

var (
	ErrCycleInProgress = errors.New("collection cycle already running")
	ErrUnknownMode     = errors.New("unknown collection mode")
)

const (
	DiscoveryPlaylist = "playlist"
	DiscoveryRSS      = "rss"
)

type CollectorServiceInterface interface {
	RunCollectionCycle(ctx context.Context, set models.TargetSet, mode string) (*models.CollectionResult, error)
	Latest() *models.CollectionResult
	LastReport() *models.CycleReport
	Publish(result *models.CollectionResult)
	Running() bool
	Modes() []string
}

type CollectorService struct {
	conf       *structures.Config
	pool       keypool.KeyPoolInterface
	fetcher    *fetcher.Fetcher
	feeds      youtube.FeedSourceInterface
	classifier classifier.ClassifierInterface
	store      interfaces.SnapshotStoreInterface
	dashboard  interfaces.DashboardWriterInterface
	history    interfaces.HistoryStoreInterface
	freshness  targets.Freshness
	options    aggregate.Options
	metrics    providers.MetricsProviderInterface
	logger     providers.Logger

	running atomic.Bool
	latest  atomic.Pointer[models.CollectionResult]
	report  atomic.Pointer[models.CycleReport]
	now     func() time.Time
}

func NewCollectorService(
	conf *structures.Config,
	pool keypool.KeyPoolInterface,
	f *fetcher.Fetcher,
	feeds youtube.FeedSourceInterface,
	cls classifier.ClassifierInterface,
	store interfaces.SnapshotStoreInterface,
	dashboard interfaces.DashboardWriterInterface,
	history interfaces.HistoryStoreInterface,
	metrics providers.MetricsProviderInterface,
	logger providers.Logger,
) *CollectorService {
	return &CollectorService{
		conf:       conf,
		pool:       pool,
		fetcher:    f,
		feeds:      feeds,
		classifier: cls,
		store:      store,
		dashboard:  dashboard,
		history:    history,
		freshness:  targets.NewFreshness(conf),
		options:    aggregate.OptionsFromConfig(conf),
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

func (c *CollectorService) Latest() *models.CollectionResult { return c.latest.Load() }

func (c *CollectorService) LastReport() *models.CycleReport { return c.report.Load() }

func (c *CollectorService) Running() bool { return c.running.Load() }

// Publish makes result the one served as latest, e.g. after a restart.
func (c *CollectorService) Publish(result *models.CollectionResult) {
	if result == nil {
		return
	}
	c.latest.Store(result)
	report := result.Report()
	c.report.Store(&report)
}

func (c *CollectorService) Modes() []string {
	out := make([]string, 0, len(c.conf.Collection.Modes))
	for name := range c.conf.Collection.Modes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// cycle carries the state of one RunCollectionCycle call.
type cycle struct {
	result     *models.CollectionResult
	mode       structures.ModeConfig
	now        time.Time
	quotaStart int64

	mu          sync.Mutex
	videoOwners map[string]string
	fromSearch  map[string]bool
	discoveryKO atomic.Int64
}

// RunCollectionCycle runs one collection pass for the tiers of mode.
//
// Absorbable provider failures drop the affected entities and the cycle
// continues. Pool exhaustion or any unclassified error aborts it: the
// returned result is marked Fatal, baselines stay untouched and the error
// is returned alongside it.
func (c *CollectorService) RunCollectionCycle(ctx context.Context, set models.TargetSet, mode string) (*models.CollectionResult, error) {
	modeConf, ok := c.conf.Collection.Modes[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if !c.running.CompareAndSwap(false, true) {
		return nil, ErrCycleInProgress
	}
	defer c.running.Store(false)

	now := c.now()
	cy := &cycle{
		result: &models.CollectionResult{
			CycleID:   uuid.NewString(),
			Mode:      mode,
			StartedAt: now,
		},
		mode:        modeConf,
		now:         now,
		quotaStart:  quotaUsed(c.pool.Status()),
		videoOwners: make(map[string]string),
		fromSearch:  make(map[string]bool),
	}
	c.logger.Infof(providers.TypeCollector, "Cycle %s started in %s mode with %d of %d keys available", cy.result.CycleID, mode, c.pool.Available(), c.pool.Len())

	// 1. baselines
	baseChannels, err := c.store.LoadChannels()
	if err != nil {
		return c.fail(cy, err)
	}
	baseVideos, err := c.store.LoadVideos()
	if err != nil {
		return c.fail(cy, err)
	}

	// 2. channel selection
	selected := set.Channels(modeConf.Tiers...)
	due, fresh := c.freshness.Plan(set, modeConf.Tiers, modeConf.ForceRefresh, baseChannels, now)
	if !modeConf.FetchChannels {
		due, fresh = nil, selected
	}
	cy.result.Stats.ChannelsRequested = len(due)
	cy.result.Stats.ChannelsSkipped = len(fresh)

	// 3. channel snapshots
	fetchedChannels, err := c.fetchChannels(ctx, cy, due)
	if err != nil {
		return c.fail(cy, err)
	}
	known := engine.MergeChannels(baseChannels, fetchedChannels)

	// 4. video discovery
	err = c.discover(ctx, cy, selected, known)
	cy.result.Stats.DiscoveryFailed = int(cy.discoveryKO.Load())
	if err != nil {
		return c.fail(cy, err)
	}

	// 5. search
	if modeConf.Search {
		if err := c.search(ctx, cy); err != nil {
			return c.fail(cy, err)
		}
	}

	// 6. video snapshots
	fetchedVideos, err := c.fetchVideos(ctx, cy)
	if err != nil {
		return c.fail(cy, err)
	}

	// 7. merge, diff, aggregate
	videos := engine.MergeVideos(baseVideos, fetchedVideos)
	if keep := c.conf.Collection.VideoRetention; keep > 0 {
		var pruned int
		videos, pruned = engine.Prune(videos, now.Add(-keep))
		cy.result.Stats.VideosPruned = pruned
		if pruned > 0 {
			c.logger.Infof(providers.TypeCollector, "Cycle %s pruned %d videos not seen for %s", cy.result.CycleID, pruned, keep)
		}
	}
	channelDeltas := engine.ChannelDeltas(known, baseChannels, now)
	videoDeltas := engine.VideoDeltas(videos, baseVideos, now)

	res := cy.result
	res.Channels = known
	res.Videos = videos
	res.ChannelDeltas = channelDeltas
	res.VideoDeltas = videoDeltas
	res.Summary = aggregate.Summarize(aggregate.Input{
		Channels:      known,
		Videos:        videos,
		ChannelDeltas: channelDeltas,
		VideoDeltas:   videoDeltas,
	}, c.options, now)
	c.proposeTiers(set, known, channelDeltas)

	// 8. persist and publish
	if err := c.store.SaveChannels(known); err != nil {
		c.logger.Errorf(providers.TypeStore, "Cycle %s could not save channel baseline: %v", res.CycleID, err)
	}
	if err := c.store.SaveVideos(videos); err != nil {
		c.logger.Errorf(providers.TypeStore, "Cycle %s could not save video baseline: %v", res.CycleID, err)
	}

	c.finish(cy)
	c.Publish(res)
	if err := c.dashboard.Write(res); err != nil {
		c.logger.Errorf(providers.TypeStore, "Cycle %s could not write dashboard: %v", res.CycleID, err)
	}
	c.record(res)

	c.logger.Infof(providers.TypeCollector, "Cycle %s (%s) %s in %s: %s channels, %s videos (%s shorts), %s views, quota used %s",
		res.CycleID, mode, res.Outcome(), res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond),
		humanize.Comma(int64(len(known))), humanize.Comma(int64(len(videos))),
		humanize.Comma(int64(res.Summary.TotalShorts)), humanize.Comma(res.Summary.TotalViews),
		humanize.Comma(res.Stats.QuotaUsed))
	return res, nil
}

func (c *CollectorService) fetchChannels(ctx context.Context, cy *cycle, ids []string) ([]*models.ChannelSnapshot, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	batch, err := fetcher.ExecuteBatched(ctx, c.fetcher, fetcher.OpChannels, ids, c.conf.Fetcher.BatchSize,
		func(ctx context.Context, client youtube.Client, chunk []string) ([]*models.ChannelSnapshot, error) {
			return client.GetChannels(ctx, chunk)
		})
	if err != nil {
		return nil, err
	}
	for _, ch := range batch.Items {
		if ch.LastFetched.IsZero() {
			ch.LastFetched = cy.now
		}
	}
	cy.result.Stats.ChannelsSucceeded = len(batch.Items)
	cy.result.Stats.ChannelsFailed = len(ids) - len(batch.Items)
	return batch.Items, nil
}

// discover lists recent uploads of every selected channel in waves of at
// most fetcher.maxConcurrency goroutines. A failed channel is skipped.
func (c *CollectorService) discover(ctx context.Context, cy *cycle, channelIDs []string, known map[string]*models.ChannelSnapshot) error {
	limit := cy.mode.VideosPerChannel
	if limit <= 0 || limit > youtube.MaxBatch {
		limit = youtube.MaxBatch
	}
	width := c.conf.Fetcher.MaxConcurrency
	if width <= 0 {
		width = 1
	}

	for _, wave := range fetcher.Chunk(channelIDs, width) {
		g, gctx := errgroup.WithContext(ctx)
		for _, channelID := range wave {
			channelID := channelID
			g.Go(func() error {
				ids, err := c.discoverChannel(gctx, cy, channelID, known[channelID], limit)
				if err != nil {
					if cy.mode.Discovery != DiscoveryRSS && !models.IsAbsorbable(err) {
						return fmt.Errorf("discover %s: %w", channelID, err)
					}
					cy.discoveryKO.Inc()
					c.logger.Warnf(providers.TypeCollector, "Discovery failed for %s: %v", channelID, err)
					return nil
				}
				cy.mu.Lock()
				for _, id := range ids {
					if _, seen := cy.videoOwners[id]; !seen {
						cy.videoOwners[id] = channelID
					}
				}
				cy.mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
	}
	if n := cy.discoveryKO.Load(); n > 0 {
		c.logger.Warnf(providers.TypeCollector, "Cycle %s: discovery failed for %d of %d channels", cy.result.CycleID, n, len(channelIDs))
	}
	return nil
}

func (c *CollectorService) discoverChannel(ctx context.Context, cy *cycle, channelID string, ch *models.ChannelSnapshot, limit int) ([]string, error) {
	if cy.mode.Discovery == DiscoveryRSS {
		return c.feeds.RecentVideos(ctx, channelID, limit)
	}
	playlist := youtube.UploadsPlaylist(channelID)
	if ch != nil && ch.UploadsPlaylist != "" {
		playlist = ch.UploadsPlaylist
	}
	if playlist == "" {
		return nil, &models.ProviderError{Kind: models.ErrNotFound, Reason: "no uploads playlist"}
	}
	return fetcher.Execute(ctx, c.fetcher, fetcher.OpPlaylists, func(ctx context.Context, client youtube.Client) ([]string, error) {
		return client.GetPlaylistItems(ctx, playlist, limit)
	})
}

func (c *CollectorService) search(ctx context.Context, cy *cycle) error {
	window := c.conf.Collection.SearchWindow
	if window <= 0 {
		window = 48 * time.Hour
	}
	for _, query := range c.conf.Collection.SearchQueries {
		opts := youtube.SearchOptions{
			Query:          query,
			MaxResults:     youtube.MaxBatch,
			Order:          "viewCount",
			PublishedAfter: cy.now.Add(-window),
			RegionCode:     "KR",
			Language:       "ko",
		}
		ids, err := fetcher.Execute(ctx, c.fetcher, fetcher.OpSearch, func(ctx context.Context, client youtube.Client) ([]string, error) {
			return client.Search(ctx, opts)
		})
		if err != nil {
			if !models.IsAbsorbable(err) {
				return fmt.Errorf("search %q: %w", query, err)
			}
			cy.result.Stats.SearchesFailed++
			c.logger.Warnf(providers.TypeCollector, "Search %q failed: %v", query, err)
			continue
		}
		for _, id := range ids {
			if _, seen := cy.videoOwners[id]; !seen {
				cy.videoOwners[id] = ""
				cy.fromSearch[id] = true
			}
		}
	}
	return nil
}

func (c *CollectorService) fetchVideos(ctx context.Context, cy *cycle) ([]*models.VideoSnapshot, error) {
	ids := make([]string, 0, len(cy.videoOwners))
	for id := range cy.videoOwners {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	cy.result.Stats.VideosRequested = len(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	batch, err := fetcher.ExecuteBatched(ctx, c.fetcher, fetcher.OpVideos, ids, c.conf.Fetcher.BatchSize,
		func(ctx context.Context, client youtube.Client, chunk []string) ([]*models.VideoSnapshot, error) {
			return client.GetVideos(ctx, chunk)
		})
	if err != nil {
		return nil, err
	}
	for _, v := range batch.Items {
		c.classifier.Apply(v)
		v.FromSearch = cy.fromSearch[v.ID]
		if v.ChannelID == "" {
			v.ChannelID = cy.videoOwners[v.ID]
		}
		if v.LastFetched.IsZero() {
			v.LastFetched = cy.now
		}
	}
	cy.result.Stats.VideosSucceeded = len(batch.Items)
	cy.result.Stats.VideosFailed = len(ids) - len(batch.Items)
	return batch.Items, nil
}

// proposeTiers logs how the current ranking would reshuffle the tiers.
func (c *CollectorService) proposeTiers(set models.TargetSet, channels map[string]*models.ChannelSnapshot, deltas map[string]models.ChannelDelta) {
	changes := aggregate.Reassignments(set, aggregate.RankTiers(channels, deltas))
	if len(changes) == 0 {
		return
	}
	c.logger.Infof(providers.TypeCollector, "Tier ranking suggests %d reassignments", len(changes))
	c.logger.Debugf(providers.TypeCollector, "Tier moves: %v", aggregate.Moves(changes))
}

func (c *CollectorService) fail(cy *cycle, err error) (*models.CollectionResult, error) {
	res := cy.result
	res.Fatal = true
	res.Cause = err.Error()
	c.finish(cy)
	report := res.Report()
	c.report.Store(&report)
	c.record(res)
	c.logger.Errorf(providers.TypeCollector, "Cycle %s (%s) aborted after %s: %v", res.CycleID, res.Mode, res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond), err)
	return res, err
}

func (c *CollectorService) finish(cy *cycle) {
	res := cy.result
	res.FinishedAt = c.now()
	res.Quota = c.pool.Status()
	res.Stats.QuotaUsed = max(0, quotaUsed(res.Quota)-cy.quotaStart)

	c.metrics.ObserveCycle(res.Mode, res.Outcome(), res.FinishedAt.Sub(res.StartedAt))
	c.metrics.SetQuota(res.Quota)
	if res.Fatal {
		return
	}
	c.metrics.SetEntitiesTotal(string(models.KindChannels), len(res.Channels))
	c.metrics.SetEntitiesTotal(string(models.KindVideos), len(res.Videos))
	c.metrics.AddEntitiesFailed(string(models.KindChannels), res.Stats.ChannelsFailed)
	c.metrics.AddEntitiesFailed(string(models.KindVideos), res.Stats.VideosFailed)
}

func (c *CollectorService) record(res *models.CollectionResult) {
	c.history.Append(res.Report())
	if err := c.history.Flush(); err != nil {
		c.logger.Errorf(providers.TypeStore, "Could not flush cycle history: %v", err)
	}
}

func quotaUsed(status []models.CredentialStatus) int64 {
	var total int64
	for _, s := range status {
		total += s.Used
	}
	return total
}
