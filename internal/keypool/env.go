package keypool

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"ytstat/internal/providers"
	"ytstat/internal/structures"
)

const DefaultEnvPrefix = "YOUTUBE_API_KEY"

// NamedKey is a raw API key together with the stable identifier it is
// reported under. The key itself never appears in logs or status output.
type NamedKey struct {
	ID  string
	Key string
}

// LoadKeys collects keys from numbered environment variables
// (PREFIX_1, PREFIX_2 or PREFIX1, PREFIX2, …) followed by the configured
// list. Empty entries are dropped and duplicate keys collapsed.
func LoadKeys(prefix string, configured []string) []NamedKey {
	return loadKeys(prefix, configured, os.Environ())
}

func loadKeys(prefix string, configured []string, environ []string) []NamedKey {
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}

	type numbered struct {
		n    int
		name string
		key  string
	}
	var found []numbered
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, prefix) {
			continue
		}
		suffix := strings.TrimPrefix(strings.TrimPrefix(name, prefix), "_")
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 1 {
			continue
		}
		found = append(found, numbered{n: n, name: name, key: strings.TrimSpace(value)})
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].n != found[j].n {
			return found[i].n < found[j].n
		}
		return found[i].name < found[j].name
	})

	seen := make(map[string]struct{})
	out := make([]NamedKey, 0, len(found)+len(configured))
	push := func(id, key string) {
		if key == "" {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, NamedKey{ID: id, Key: key})
	}

	for _, f := range found {
		push(fmt.Sprintf("env-%d", f.n), f.key)
	}
	for i, raw := range configured {
		for _, part := range strings.Split(raw, ",") {
			push(fmt.Sprintf("conf-%d", i+1), strings.TrimSpace(part))
		}
	}

	// ids must stay unique when one configured entry held several keys
	ids := make(map[string]int)
	for i := range out {
		ids[out[i].ID]++
		if c := ids[out[i].ID]; c > 1 {
			out[i].ID = fmt.Sprintf("%s.%d", out[i].ID, c)
		}
	}
	return out
}

// OptionsFromConfig maps the quota section onto pool options.
func OptionsFromConfig(conf *structures.Config) Options {
	return Options{
		DailyLimit:       conf.Quota.DailyLimit,
		LowPriorityRatio: conf.Quota.LowPriorityRatio,
		ErrorThreshold:   conf.Quota.ErrorThreshold,
	}
}

// NewKeyPoolFromConfig builds the pool from configuration and the process
// environment. An empty pool is allowed; every Acquire then fails with
// a pool-exhausted error until keys are synced in.
func NewKeyPoolFromConfig(conf *structures.Config, logger providers.Logger) *KeyPool {
	keys := LoadKeys(conf.Quota.EnvPrefix, conf.Quota.Keys)
	pool := NewKeyPool(OptionsFromConfig(conf), logger, keys...)
	if len(keys) == 0 {
		logger.Warnf(providers.TypeQuota, "No API keys configured, set %s_1..N or quota.keys", envPrefix(conf))
	} else {
		logger.Infof(providers.TypeQuota, "Key pool initialized with %d keys, %d units each", len(keys), pool.opts.DailyLimit)
	}
	return pool
}

// Reload re-reads the key sources and syncs the pool with them.
func Reload(pool KeyPoolInterface, conf *structures.Config) (added, removed int) {
	return pool.Sync(LoadKeys(conf.Quota.EnvPrefix, conf.Quota.Keys))
}

func envPrefix(conf *structures.Config) string {
	if conf.Quota.EnvPrefix == "" {
		return DefaultEnvPrefix
	}
	return conf.Quota.EnvPrefix
}
