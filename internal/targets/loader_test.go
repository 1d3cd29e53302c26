package targets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ytstat/internal/models"
	"ytstat/internal/structures"
	"ytstat/internal/testutil"
)

const (
	chA = "UCaaaaaaaaaaaaaaaaaaaaaa"
	chB = "UCbbbbbbbbbbbbbbbbbbbbbb"
	chC = "UCcccccccccccccccccccccc"
)

func writeTargets(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func newTestLoader(path string, resolver *testutil.MockHandleResolver) (*Loader, *testutil.MockLogger) {
	logger := &testutil.MockLogger{}
	conf := &structures.Config{Collection: structures.CollectionConfig{TargetsFile: path}}
	return NewLoader(conf, resolver, logger), logger
}

func TestParse_TierMapping(t *testing.T) {
	set, err := Parse([]byte("tier2:\n  - "+chB+"\ntier1:\n  - "+chA+"\nextra:\n  - "+chC+"\n"), ".yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"tier1", "tier2", "extra"}, set.Order)
	assert.Equal(t, []string{chA, chB, chC}, set.Channels())
}

func TestParse_JSON(t *testing.T) {
	set, err := Parse([]byte(`{"tier1":["`+chA+`"],"tier3":[]}`), ".json")
	require.NoError(t, err)

	assert.Equal(t, []string{"tier1", "tier3"}, set.Order)
	assert.Equal(t, []string{chA}, set.Channels())
}

func TestParse_FlatListIsSplit(t *testing.T) {
	ids := make([]string, 0, 55)
	for i := 0; i < 55; i++ {
		ids = append(ids, fmt.Sprintf(`"id%02d"`, i))
	}
	body := "[" + joinComma(ids) + "]"

	set, err := Parse([]byte(body), ".json")
	require.NoError(t, err)

	assert.Len(t, set.Tiers["tier1"], 20)
	assert.Len(t, set.Tiers["tier2"], 30)
	assert.Len(t, set.Tiers["tier3"], 5)
	assert.Equal(t, "id00", set.Tiers["tier1"][0])
	assert.Equal(t, "id20", set.Tiers["tier2"][0])
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("tier1: nope"), ".yaml")
	assert.Error(t, err)

	_, err = Parse([]byte("{"), ".json")
	assert.Error(t, err)

	_, err = Parse([]byte("[]"), ".toml")
	assert.Error(t, err)

	_, err = Parse([]byte(""), ".yaml")
	assert.ErrorIs(t, err, ErrEmptyTargets)
}

func TestLoader_ResolvesHandles(t *testing.T) {
	path := writeTargets(t, "targets.yaml", "tier1:\n  - "+chA+"\n  - \"@news\"\ntier2:\n  - \"@missing\"\n")
	loader, logger := newTestLoader(path, &testutil.MockHandleResolver{Handles: map[string]string{"@news": chB}})

	set, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{chA, chB}, set.Tiers["tier1"])
	assert.Empty(t, set.Tiers["tier2"])
	assert.Equal(t, 1, logger.Count("warn"))
}

func TestLoader_EmptyAfterResolution(t *testing.T) {
	path := writeTargets(t, "targets.yaml", "tier1:\n  - \"@gone\"\n")
	loader, _ := newTestLoader(path, &testutil.MockHandleResolver{})

	_, err := loader.Load(context.Background())
	assert.ErrorIs(t, err, ErrEmptyTargets)
}

func TestLoader_MissingFile(t *testing.T) {
	loader, _ := newTestLoader(filepath.Join(t.TempDir(), "nope.yaml"), nil)

	_, err := loader.Load(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_SaveRoundTrip(t *testing.T) {
	for _, name := range []string{"targets.yaml", "targets.json"} {
		t.Run(name, func(t *testing.T) {
			path := writeTargets(t, name, "[]")
			loader, _ := newTestLoader(path, nil)

			want := models.TargetSet{
				Tiers: map[string][]string{"tier1": {chA}, "tier2": {chB, chC}},
				Order: []string{"tier1", "tier2"},
			}
			require.NoError(t, loader.Save(want))

			got, err := loader.Load(context.Background())
			require.NoError(t, err)
			assert.Equal(t, want.Channels(), got.Channels())
			assert.Equal(t, want.Order, got.Order)
		})
	}
}

func joinComma(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}
