package statistic

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"ytstat/internal/keypool"
	"ytstat/internal/models"
	"ytstat/internal/providers"
	"ytstat/internal/services"
	"ytstat/internal/statistic/interfaces"
	"ytstat/internal/structures"
	"ytstat/internal/targets"
)

type Scheduler struct {
	config    *structures.Config
	logger    providers.Logger
	collector services.CollectorServiceInterface
	pool      keypool.KeyPoolInterface
	targets   targets.LoaderInterface
	dashboard interfaces.DashboardWriterInterface
	history   interfaces.HistoryStoreInterface
	cron      *gron.Cron
	ctx       context.Context
	cancel    context.CancelFunc
	opsMu     sync.Mutex
}

func (s *Scheduler) Init() {
	s.cron = gron.New()
	interval := s.config.Collection.Interval
	rollover, err := newResetSchedule(s.config.Quota.ResetAt, s.config.Quota.ResetTimezone)
	if err != nil {
		s.logger.Warnf(providers.TypeQuota, "Invalid quota reset schedule, using midnight UTC: %v", err)
		rollover = resetSchedule{loc: time.UTC}
	}

	s.cron.AddFunc(gron.Every(interval), func() {
		ctx, cancel := context.WithTimeout(s.ctx, interval)
		defer cancel()
		if _, err := s.Collect(ctx, s.config.Collection.DefaultMode); err != nil {
			if errors.Is(err, services.ErrCycleInProgress) {
				s.logger.Infof(providers.TypeCollector, "Previous cycle still running, skipping this tick")
				return
			}
			s.logger.Errorf(providers.TypeCollector, "Scheduled cycle failed: %s", err)
		}
	})

	s.cron.AddFunc(rollover, s.Rollover)

	s.cron.Start()
	s.logger.Infof(providers.TypeApp, "Scheduler started: %s cycles every %s, quota rollover daily at %s", s.config.Collection.DefaultMode, interval, rollover)
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.cancel()
}

// Collect reloads credentials and targets, then runs one cycle in mode.
func (s *Scheduler) Collect(ctx context.Context, mode string) (*models.CollectionResult, error) {
	if added, removed := keypool.Reload(s.pool, s.config); added > 0 || removed > 0 {
		s.logger.Infof(providers.TypeQuota, "Key pool reloaded: %d added, %d removed, %d keys", added, removed, s.pool.Len())
	}

	set, err := s.targets.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.collector.RunCollectionCycle(ctx, set, mode)
}

// Rollover resets daily quota usage.
func (s *Scheduler) Rollover() {
	s.pool.Reset()
	s.logger.Infof(providers.TypeQuota, "Daily quota reset, %d of %d keys available", s.pool.Available(), s.pool.Len())
}

// Restore loads the cycle history and republishes the last dashboard so the
// API has data before the first cycle finishes.
func (s *Scheduler) Restore() error {
	if err := s.history.Restore(); err != nil {
		return err
	}
	result, err := s.dashboard.Read()
	if err != nil {
		return err
	}
	if result != nil {
		s.collector.Publish(result)
		s.logger.Infof(providers.TypeApp, "Restored dashboard of cycle %s", result.CycleID)
	}
	return nil
}

func (s *Scheduler) Persist() error {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	s.logger.Infof(providers.TypeApp, "Persisting history and dashboard...")
	if err := s.history.Flush(); err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting history: %s", err)
		return err
	}
	if latest := s.collector.Latest(); latest != nil {
		if err := s.dashboard.Write(latest); err != nil {
			s.logger.Errorf(providers.TypeApp, "Error while persisting dashboard: %s", err)
			return err
		}
	}
	return nil
}

func NewScheduler(
	config *structures.Config,
	logger providers.Logger,
	collector services.CollectorServiceInterface,
	pool keypool.KeyPoolInterface,
	loader targets.LoaderInterface,
	dashboard interfaces.DashboardWriterInterface,
	history interfaces.HistoryStoreInterface,
) interfaces.SchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		config:    config,
		logger:    logger,
		collector: collector,
		pool:      pool,
		targets:   loader,
		dashboard: dashboard,
		history:   history,
		ctx:       ctx,
		cancel:    cancel,
	}
}
