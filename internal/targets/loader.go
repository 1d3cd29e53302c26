// Package targets loads the tiered list of tracked channels.
package targets

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"ytstat/internal/models"
	"ytstat/internal/providers"
	"ytstat/internal/structures"
	"ytstat/internal/youtube"
)

var ErrEmptyTargets = errors.New("target list is empty")

type LoaderInterface interface {
	Load(ctx context.Context) (models.TargetSet, error)
	Save(set models.TargetSet) error
}

type Loader struct {
	path     string
	resolver youtube.HandleResolverInterface
	logger   providers.Logger
}

func NewLoader(conf *structures.Config, resolver youtube.HandleResolverInterface, logger providers.Logger) *Loader {
	return &Loader{
		path:     conf.Collection.TargetsFile,
		resolver: resolver,
		logger:   logger,
	}
}

// Load reads the targets file and resolves every @handle entry to a
// channel id. Handles that cannot be resolved are logged and skipped.
func (l *Loader) Load(ctx context.Context) (models.TargetSet, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return models.TargetSet{}, fmt.Errorf("read targets %s: %w", l.path, err)
	}
	set, err := Parse(data, filepath.Ext(l.path))
	if err != nil {
		return models.TargetSet{}, fmt.Errorf("parse targets %s: %w", l.path, err)
	}

	resolved := models.TargetSet{Tiers: make(map[string][]string, len(set.Tiers)), Order: set.Order}
	for _, tier := range set.Order {
		for _, entry := range set.Tiers[tier] {
			id, err := l.resolve(ctx, entry)
			if err != nil {
				if ctx.Err() != nil {
					return models.TargetSet{}, ctx.Err()
				}
				l.logger.Warnf(providers.TypeCollector, "Skipping target %q in %s: %v", entry, tier, err)
				continue
			}
			resolved.Tiers[tier] = append(resolved.Tiers[tier], id)
		}
	}

	if len(resolved.Channels()) == 0 {
		return resolved, ErrEmptyTargets
	}
	return resolved, nil
}

func (l *Loader) resolve(ctx context.Context, entry string) (string, error) {
	if youtube.IsChannelID(entry) {
		return entry, nil
	}
	if l.resolver == nil {
		return "", fmt.Errorf("no handle resolver configured")
	}
	return l.resolver.Resolve(ctx, entry)
}

// Save writes set back to the targets file in the format its extension
// names.
func (l *Loader) Save(set models.TargetSet) error {
	data, err := Marshal(set, filepath.Ext(l.path))
	if err != nil {
		return err
	}
	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write targets: %w", err)
	}
	return os.Rename(tmp, l.path)
}

// Parse decodes a tier mapping or a flat list. A flat list is split into
// tiers of 20, 30 and the rest.
func Parse(data []byte, ext string) (models.TargetSet, error) {
	var raw interface{}
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return models.TargetSet{}, err
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return models.TargetSet{}, err
		}
	default:
		return models.TargetSet{}, fmt.Errorf("unsupported targets format %q", ext)
	}

	switch v := raw.(type) {
	case []interface{}:
		return models.SplitTiers(entries(v)), nil
	case map[string]interface{}:
		set := models.TargetSet{Tiers: make(map[string][]string, len(v))}
		for tier, list := range v {
			items, ok := list.([]interface{})
			if !ok && list != nil {
				return models.TargetSet{}, fmt.Errorf("tier %s: expected a list", tier)
			}
			set.Tiers[tier] = entries(items)
			set.Order = append(set.Order, tier)
		}
		sortTiers(set.Order)
		return set, nil
	case nil:
		return models.TargetSet{}, ErrEmptyTargets
	default:
		return models.TargetSet{}, fmt.Errorf("unexpected targets document %T", raw)
	}
}

func Marshal(set models.TargetSet, ext string) ([]byte, error) {
	tiers := make(map[string][]string, len(set.Tiers))
	for tier, ids := range set.Tiers {
		tiers[tier] = append([]string{}, ids...)
	}
	if strings.ToLower(ext) == ".json" {
		return json.MarshalIndent(tiers, "", "  ")
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tiers); err != nil {
		return nil, err
	}
	return buf.Bytes(), enc.Close()
}

func entries(items []interface{}) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		s := strings.TrimSpace(fmt.Sprint(item))
		if item == nil || s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// sortTiers puts the default tier names first, then the rest by name.
func sortTiers(order []string) {
	rank := func(tier string) int {
		for i, t := range models.DefaultTiers {
			if t == tier {
				return i
			}
		}
		return len(models.DefaultTiers)
	}
	sort.Slice(order, func(i, j int) bool {
		ri, rj := rank(order[i]), rank(order[j])
		if ri != rj {
			return ri < rj
		}
		return order[i] < order[j]
	})
}
