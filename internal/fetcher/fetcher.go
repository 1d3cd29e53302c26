// Package fetcher runs provider calls under the key pool's quota accounting.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"ytstat/internal/keypool"
	"ytstat/internal/models"
	"ytstat/internal/providers"
	"ytstat/internal/structures"
	"ytstat/internal/youtube"
)

// ErrGate reports that the caller's context ended while waiting for the
// inter-call gate. No call was made and no credential is blamed.
var ErrGate = errors.New("rate gate wait aborted")

type Operation string

const (
	OpChannels  Operation = "channels.list"
	OpVideos    Operation = "videos.list"
	OpPlaylists Operation = "playlistItems.list"
	OpSearch    Operation = "search.list"
)

type Costs struct {
	List   int64
	Search int64
}

func (c Costs) Of(op Operation) int64 {
	if op == OpSearch {
		return c.Search
	}
	return c.List
}

// Fetcher binds pooled credentials to provider clients. A single Fetcher is
// shared by every goroutine of a cycle; the gate spaces calls across all of them.
type Fetcher struct {
	pool    keypool.KeyPoolInterface
	factory youtube.ClientFactory
	gate    *rate.Limiter
	costs   Costs
	retries int
	metrics providers.MetricsProviderInterface
	logger  providers.Logger
}

func NewFetcher(conf *structures.Config, pool keypool.KeyPoolInterface, factory youtube.ClientFactory, metrics providers.MetricsProviderInterface, logger providers.Logger) *Fetcher {
	costs := Costs{List: conf.Quota.ListCost, Search: conf.Quota.SearchCost}
	if costs.List <= 0 {
		costs.List = 1
	}
	if costs.Search <= 0 {
		costs.Search = 100
	}
	return &Fetcher{
		pool:    pool,
		factory: factory,
		gate:    newGate(conf.Fetcher.Delay),
		costs:   costs,
		metrics: metrics,
		logger:  logger,
	}
}

// WithRetries caps the number of credential rotations per call. Zero means
// one attempt per pooled credential, counted at call time.
func (f *Fetcher) WithRetries(n int) *Fetcher {
	f.retries = n
	return f
}

func (f *Fetcher) Costs() Costs {
	return f.costs
}

func newGate(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}

func (f *Fetcher) attempts() int {
	if f.retries > 0 {
		return f.retries
	}
	if n := f.pool.Len(); n > 0 {
		return n
	}
	return 1
}

// Execute runs call with a pooled credential.
//
// The pool reserves the operation's cost when it hands out a credential.
// A success or a not-found answer charges the reservation; every other
// failure releases it. Quota and auth failures are recorded and the call
// moves to the next credential. A transient failure is retried once on the
// same credential. Anything else is recorded and returned without rotating.
// Errors from the pool itself are returned as is.
func Execute[T any](ctx context.Context, f *Fetcher, op Operation, call func(context.Context, youtube.Client) (T, error)) (T, error) {
	var zero T
	cost := f.costs.Of(op)
	attempts := f.attempts()

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		cred, err := f.pool.Acquire(cost)
		if err != nil {
			f.metrics.ObserveAPICall(string(op), acquireOutcome(err))
			return zero, err
		}
		if attempt > 0 {
			f.metrics.IncKeyRotations()
			f.logger.Debugf(providers.TypeQuota, "%s rotated to key %s (attempt %d/%d)", op, cred.ID, attempt+1, attempts)
		}

		result, err := invoke(ctx, f, cred, op, call)
		if err == nil {
			f.charge(op, cred, cost)
			f.metrics.ObserveAPICall(string(op), "ok")
			return result, nil
		}
		if errors.Is(err, models.ErrNotFound) {
			f.charge(op, cred, cost)
		} else {
			f.pool.Release(cred.ID, cost)
		}
		if errors.Is(err, ErrGate) {
			return zero, err
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		f.pool.RecordFailure(cred.ID, err)
		f.metrics.ObserveAPICall(string(op), outcome(err))

		if !errors.Is(err, models.ErrQuotaExceeded) && !errors.Is(err, models.ErrAuth) {
			return zero, err
		}
		f.logger.Warnf(providers.TypeQuota, "%s failed on key %s: %v", op, cred.ID, err)
		lastErr = err
	}
	return zero, lastErr
}

func (f *Fetcher) charge(op Operation, cred models.Credential, cost int64) {
	if err := f.pool.RecordSuccess(cred.ID, cost); err != nil {
		f.logger.Warnf(providers.TypeQuota, "%s answered on key %s but charge failed: %v", op, cred.ID, err)
	}
}

func acquireOutcome(err error) string {
	if errors.Is(err, models.ErrQuotaExceeded) {
		return "insufficient"
	}
	return "exhausted"
}

// invoke waits on the gate and runs call, retrying a transient failure once
// on the same credential.
func invoke[T any](ctx context.Context, f *Fetcher, cred models.Credential, op Operation, call func(context.Context, youtube.Client) (T, error)) (T, error) {
	var zero T
	client := f.factory.ForCredential(cred)

	for try := 0; ; try++ {
		if err := f.gate.Wait(ctx); err != nil {
			return zero, fmt.Errorf("%w: %w", ErrGate, err)
		}
		result, err := call(ctx, client)
		if err == nil {
			return result, nil
		}
		if try > 0 || !errors.Is(err, models.ErrTransient) || ctx.Err() != nil {
			return zero, err
		}
		f.pool.RecordFailure(cred.ID, err)
		f.metrics.ObserveAPICall(string(op), "transient")
		f.logger.Debugf(providers.TypeCollector, "%s transient failure on key %s, retrying: %v", op, cred.ID, err)
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, models.ErrQuotaExceeded):
		return "quota"
	case errors.Is(err, models.ErrAuth):
		return "auth"
	case errors.Is(err, models.ErrTransient):
		return "transient"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
