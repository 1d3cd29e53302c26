// Package keypool owns the API credentials and their quota accounting.
package keypool

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"ytstat/internal/models"
	"ytstat/internal/providers"
)

var ErrUnknownCredential = errors.New("unknown credential")

type Options struct {
	DailyLimit       int64
	LowPriorityRatio float64
	ErrorThreshold   int
}

func DefaultOptions() Options {
	return Options{
		DailyLimit:       10000,
		LowPriorityRatio: 0.9,
		ErrorThreshold:   5,
	}
}

type KeyPoolInterface interface {
	Acquire(cost int64) (models.Credential, error)
	RecordSuccess(id string, cost int64) error
	Release(id string, cost int64)
	RecordFailure(id string, cause error)
	Add(id, key string) bool
	Remove(id string) bool
	Sync(keys []NamedKey) (added, removed int)
	Reset()
	Status() []models.CredentialStatus
	Len() int
	Available() int
}

// KeyPool hands out credentials round-robin, skipping exhausted ones.
// All counter updates happen under mu.
type KeyPool struct {
	mu     sync.Mutex
	creds  []*models.Credential
	cursor int
	opts   Options
	logger providers.Logger
}

func NewKeyPool(opts Options, logger providers.Logger, keys ...NamedKey) *KeyPool {
	def := DefaultOptions()
	if opts.DailyLimit <= 0 {
		opts.DailyLimit = def.DailyLimit
	}
	if opts.LowPriorityRatio <= 0 || opts.LowPriorityRatio > 1 {
		opts.LowPriorityRatio = def.LowPriorityRatio
	}
	if opts.ErrorThreshold <= 0 {
		opts.ErrorThreshold = def.ErrorThreshold
	}
	p := &KeyPool{opts: opts, logger: logger}
	for _, k := range keys {
		p.add(k.ID, k.Key)
	}
	return p
}

// Acquire reserves cost units on the next usable credential and returns a
// copy of it. Low-priority credentials are only handed out when no other
// credential qualifies. The reservation is settled by RecordSuccess or
// Release.
//
// When usable credentials remain but none has cost units left the error is
// an *models.InsufficientQuotaError; a *models.PoolExhaustedError means no
// credential is usable at all.
func (p *KeyPool) Acquire(cost int64) (models.Credential, error) {
	if cost < 0 {
		cost = 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.creds)
	if n == 0 {
		return models.Credential{}, &models.PoolExhaustedError{}
	}

	for pass := 0; pass < 2; pass++ {
		for i := 0; i < n; i++ {
			idx := (p.cursor + i) % n
			c := p.creds[idx]
			if c.Exhausted || c.Remaining() < cost {
				continue
			}
			if pass == 0 && c.LowPriority {
				continue
			}
			p.cursor = (idx + 1) % n
			c.Reserved += cost
			return *c, nil
		}
	}

	available := p.available()
	if available == 0 {
		return models.Credential{}, &models.PoolExhaustedError{Total: n, Available: 0}
	}
	var best int64
	for _, c := range p.creds {
		if !c.Exhausted && c.Remaining() > best {
			best = c.Remaining()
		}
	}
	return models.Credential{}, &models.InsufficientQuotaError{Cost: cost, Best: best, Available: available}
}

// RecordSuccess converts up to cost reserved units into a charge. A charge
// that would cross the hard limit is rejected and the credential is marked
// exhausted.
func (p *KeyPool) RecordSuccess(id string, cost int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := p.find(id)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCredential, id)
	}
	if cost < 0 {
		cost = 0
	}
	c.Reserved -= min(c.Reserved, cost)
	if c.QuotaUsed+c.Reserved+cost > c.QuotaLimit {
		c.Exhausted = true
		p.logger.Warnf(providers.TypeQuota, "Key %s rejected charge of %d units (%d/%d used)", c.ID, cost, c.QuotaUsed, c.QuotaLimit)
		return fmt.Errorf("%w: key %s would exceed %d units", models.ErrQuotaExceeded, c.ID, c.QuotaLimit)
	}

	c.QuotaUsed += cost
	c.ErrorCount = 0
	switch {
	case c.QuotaUsed >= c.QuotaLimit:
		c.Exhausted = true
		p.logger.Infof(providers.TypeQuota, "Key %s reached its daily limit", c.ID)
	case !c.LowPriority && float64(c.QuotaUsed) >= float64(c.QuotaLimit)*p.opts.LowPriorityRatio:
		c.LowPriority = true
		p.logger.Infof(providers.TypeQuota, "Key %s is low priority (%d/%d used)", c.ID, c.QuotaUsed, c.QuotaLimit)
	}
	return nil
}

// Release returns up to cost reserved units without charging them.
func (p *KeyPool) Release(id string, cost int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c := p.find(id); c != nil && cost > 0 {
		c.Reserved -= min(c.Reserved, cost)
	}
}

// RecordFailure updates the credential's state for a failed call.
func (p *KeyPool) RecordFailure(id string, cause error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := p.find(id)
	if c == nil {
		return
	}

	switch {
	case errors.Is(cause, models.ErrAuth):
		c.Exhausted = true
		c.Revoked = true
		p.logger.Warnf(providers.TypeQuota, "Key %s rejected by provider, disabled until restart", c.ID)
	case errors.Is(cause, models.ErrQuotaExceeded):
		if !c.Exhausted {
			p.logger.Warnf(providers.TypeQuota, "Key %s quota exceeded (%d/%d used)", c.ID, c.QuotaUsed, c.QuotaLimit)
		}
		c.Exhausted = true
	default:
		c.ErrorCount++
		if c.ErrorCount >= p.opts.ErrorThreshold && !c.Exhausted {
			c.Exhausted = true
			p.logger.Warnf(providers.TypeQuota, "Key %s disabled after %d consecutive errors", c.ID, c.ErrorCount)
		}
	}
}

func (p *KeyPool) Add(id, key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.add(id, key)
}

func (p *KeyPool) Remove(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, c := range p.creds {
		if c.ID != id {
			continue
		}
		p.creds = append(p.creds[:i], p.creds[i+1:]...)
		if p.cursor > i {
			p.cursor--
		}
		if len(p.creds) == 0 || p.cursor >= len(p.creds) {
			p.cursor = 0
		}
		return true
	}
	return false
}

// Sync makes the pool hold exactly keys. Credentials whose key is kept retain
// their counters.
func (p *KeyPool) Sync(keys []NamedKey) (added, removed int) {
	want := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		want[k.Key] = struct{}{}
	}

	p.mu.Lock()
	var drop []string
	for _, c := range p.creds {
		if _, ok := want[c.Key]; !ok {
			drop = append(drop, c.ID)
		}
	}
	p.mu.Unlock()

	for _, id := range drop {
		if p.Remove(id) {
			removed++
		}
	}
	for _, k := range keys {
		if p.Add(k.ID, k.Key) {
			added++
		}
	}
	if added > 0 || removed > 0 {
		p.logger.Infof(providers.TypeQuota, "Key pool synced: %d added, %d removed, %d total", added, removed, p.Len())
	}
	return added, removed
}

// Reset starts a new quota period. Revoked credentials stay exhausted and
// in-flight reservations are kept so their calls can still settle.
func (p *KeyPool) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.creds {
		c.QuotaUsed = 0
		c.ErrorCount = 0
		c.LowPriority = false
		c.Exhausted = c.Revoked
	}
	p.cursor = 0
}

func (p *KeyPool) Status() []models.CredentialStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]models.CredentialStatus, 0, len(p.creds))
	for _, c := range p.creds {
		pct := 0
		if c.QuotaLimit > 0 {
			pct = int(math.Round(float64(c.QuotaUsed) / float64(c.QuotaLimit) * 100))
		}
		out = append(out, models.CredentialStatus{
			ID:         c.ID,
			Used:       c.QuotaUsed,
			Reserved:   c.Reserved,
			Limit:      c.QuotaLimit,
			Errors:     c.ErrorCount,
			Available:  !c.Exhausted,
			Revoked:    c.Revoked,
			Percentage: pct,
		})
	}
	return out
}

func (p *KeyPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.creds)
}

func (p *KeyPool) Available() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.available()
}

func (p *KeyPool) available() int {
	n := 0
	for _, c := range p.creds {
		if !c.Exhausted {
			n++
		}
	}
	return n
}

func (p *KeyPool) add(id, key string) bool {
	if id == "" || key == "" {
		return false
	}
	for _, c := range p.creds {
		if c.ID == id || c.Key == key {
			return false
		}
	}
	p.creds = append(p.creds, &models.Credential{
		ID:         id,
		Key:        key,
		QuotaLimit: p.opts.DailyLimit,
	})
	return true
}

func (p *KeyPool) find(id string) *models.Credential {
	for _, c := range p.creds {
		if c.ID == id {
			return c
		}
	}
	return nil
}
