package keypool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"ytstat/internal/structures"
	"ytstat/internal/testutil"
)

func TestLoadKeys_NumberedEnvInOrder(t *testing.T) {
	env := []string{
		"YOUTUBE_API_KEY_2=two",
		"YOUTUBE_API_KEY_10=ten",
		"YOUTUBE_API_KEY_1=one",
		"YOUTUBE_API_KEY3=three",
		"YOUTUBE_API_KEYS=ignored",
		"HOME=/root",
	}
	keys := loadKeys("", nil, env)

	var got []string
	for _, k := range keys {
		got = append(got, k.Key)
	}
	assert.Equal(t, []string{"one", "two", "three", "ten"}, got)
	assert.Equal(t, "env-1", keys[0].ID)
}

func TestLoadKeys_DropsEmptyAndDuplicates(t *testing.T) {
	env := []string{"YOUTUBE_API_KEY_1=", "YOUTUBE_API_KEY_2=abc"}
	keys := loadKeys("", []string{"abc, def,,", " ghi "}, env)

	require.Len(t, keys, 3)
	assert.Equal(t, NamedKey{ID: "env-2", Key: "abc"}, keys[0])
	assert.Equal(t, NamedKey{ID: "conf-1", Key: "def"}, keys[1])
	assert.Equal(t, NamedKey{ID: "conf-2", Key: "ghi"}, keys[2])
}

func TestLoadKeys_UniqueIDsForCommaList(t *testing.T) {
	keys := loadKeys("", []string{"a,b,c"}, nil)
	require.Len(t, keys, 3)
	assert.Equal(t, "conf-1", keys[0].ID)
	assert.Equal(t, "conf-1.2", keys[1].ID)
	assert.Equal(t, "conf-1.3", keys[2].ID)
}

func TestLoadKeys_CustomPrefix(t *testing.T) {
	keys := loadKeys("YT_KEY", nil, []string{"YT_KEY_1=x", "YOUTUBE_API_KEY_1=y"})
	require.Len(t, keys, 1)
	assert.Equal(t, "x", keys[0].Key)
}

func TestNewKeyPoolFromConfig(t *testing.T) {
	t.Setenv("YTSTAT_TEST_KEY_1", "first")
	conf := &structures.Config{Quota: structures.QuotaConfig{
		EnvPrefix:      "YTSTAT_TEST_KEY",
		Keys:           []string{"second"},
		DailyLimit:     500,
		ErrorThreshold: 2,
	}}
	logger := &testutil.MockLogger{}

	pool := NewKeyPoolFromConfig(conf, logger)
	assert.Equal(t, 2, pool.Len())
	assert.Equal(t, int64(500), pool.Status()[0].Limit)

	t.Setenv("YTSTAT_TEST_KEY_2", "third")
	added, removed := Reload(pool, conf)
	assert.Equal(t, 1, added)
	assert.Equal(t, 0, removed)
	assert.Equal(t, 3, pool.Len())
}

func TestNewKeyPoolFromConfig_NoKeysWarns(t *testing.T) {
	conf := &structures.Config{Quota: structures.QuotaConfig{EnvPrefix: "YTSTAT_NOTHING_HERE"}}
	logger := &testutil.MockLogger{}

	pool := NewKeyPoolFromConfig(conf, logger)
	assert.Equal(t, 0, pool.Len())
	require.NotEmpty(t, logger.Logs)
	assert.Equal(t, "warn", logger.Logs[0].Level)
}
