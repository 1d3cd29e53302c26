package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"ytstat/internal/structures"
)

const AppName = "ytstat"

var envBindings = map[string]string{
	"webServer.port":                  "YTSTAT_PORT",
	"logger.level":                    "YTSTAT_LOG_LEVEL",
	"logger.dir":                      "YTSTAT_LOG_DIR",
	"persistence.backend":             "YTSTAT_PERSISTENCE_BACKEND",
	"persistence.dir":                 "YTSTAT_DATA_DIR",
	"persistence.sqlitePath":          "YTSTAT_SQLITE_PATH",
	"persistence.compress":            "YTSTAT_COMPRESS",
	"quota.keys":                      "YTSTAT_API_KEYS",
	"quota.dailyLimit":                "YTSTAT_DAILY_LIMIT",
	"fetcher.delay":                   "YTSTAT_FETCH_DELAY",
	"collection.interval":             "YTSTAT_COLLECT_INTERVAL",
	"collection.defaultMode":          "YTSTAT_DEFAULT_MODE",
	"collection.targetsFile":          "YTSTAT_TARGETS_FILE",
	"cache.enabled":                   "YTSTAT_CACHE_ENABLED",
	"cache.size":                      "YTSTAT_CACHE_SIZE",
	"metrics.enabled":                 "YTSTAT_METRICS_ENABLED",
	"analysis.spikeMinDelta":          "YTSTAT_SPIKE_MIN_DELTA",
	"analysis.aboveAverageMultiplier": "YTSTAT_ABOVE_AVERAGE_MULTIPLIER",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "0.0.0.0")
	v.SetDefault("webServer.port", 8080)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("logger.dir", "./logs")

	v.SetDefault("persistence.backend", "file")
	v.SetDefault("persistence.dir", "./data")
	v.SetDefault("persistence.sqlitePath", "./data/ytstat.db")
	v.SetDefault("persistence.compress", false)
	v.SetDefault("persistence.dashboardPath", "./data/dashboard.json")

	v.SetDefault("quota.envPrefix", "YOUTUBE_API_KEY")
	v.SetDefault("quota.dailyLimit", 10000)
	v.SetDefault("quota.lowPriorityRatio", 0.9)
	v.SetDefault("quota.errorThreshold", 5)
	v.SetDefault("quota.listCost", 1)
	v.SetDefault("quota.searchCost", 100)
	v.SetDefault("quota.resetAt", "00:00")
	v.SetDefault("quota.resetTimezone", "America/Los_Angeles")

	v.SetDefault("fetcher.batchSize", 50)
	v.SetDefault("fetcher.delay", 500*time.Millisecond)
	v.SetDefault("fetcher.maxConcurrency", 10)
	v.SetDefault("fetcher.timeout", 30*time.Second)
	v.SetDefault("fetcher.apiBaseURL", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("fetcher.feedBaseURL", "https://www.youtube.com/feeds/videos.xml")
	v.SetDefault("fetcher.siteBaseURL", "https://www.youtube.com")

	v.SetDefault("collection.interval", time.Hour)
	v.SetDefault("collection.defaultMode", "light")
	v.SetDefault("collection.targetsFile", "./targets.yaml")
	v.SetDefault("collection.searchWindow", 48*time.Hour)
	v.SetDefault("collection.videoRetention", 7*24*time.Hour)
	v.SetDefault("collection.modes", map[string]interface{}{
		"light": map[string]interface{}{
			"tiers": []string{"tier1"}, "videosPerChannel": 15, "discovery": "playlist", "fetchChannels": true,
		},
		"medium": map[string]interface{}{
			"tiers": []string{"tier1", "tier2"}, "videosPerChannel": 30, "discovery": "playlist", "fetchChannels": true,
		},
		"full": map[string]interface{}{
			"tiers": []string{"tier1", "tier2", "tier3"}, "videosPerChannel": 50, "discovery": "playlist",
			"fetchChannels": true, "search": true, "forceRefresh": []string{"tier1"},
		},
		"rss": map[string]interface{}{
			"tiers": []string{"tier1", "tier2", "tier3"}, "videosPerChannel": 15, "discovery": "rss", "fetchChannels": false,
		},
	})
	v.SetDefault("collection.tierRefresh", map[string]interface{}{
		"tier1": 4 * time.Hour,
		"tier2": 12 * time.Hour,
		"tier3": 24 * time.Hour,
	})

	v.SetDefault("classifier.shortMaxSeconds", 60)
	v.SetDefault("classifier.extendedMaxSeconds", 90)
	v.SetDefault("classifier.portraitRatio", 0.6)
	v.SetDefault("classifier.markers", []string{"shorts", "#shorts", "숏츠", "쇼츠"})

	v.SetDefault("analysis.spikeWindow", 48*time.Hour)
	v.SetDefault("analysis.spikeMinDelta", 5000)
	v.SetDefault("analysis.spikeLimit", 50)
	v.SetDefault("analysis.aboveAverageMinSamples", 5)
	v.SetDefault("analysis.aboveAverageMultiplier", 1.5)
	v.SetDefault("analysis.aboveAverageMinViews", 500)
	v.SetDefault("analysis.aboveAverageLimit", 30)
	v.SetDefault("analysis.topN", 20)
	v.SetDefault("analysis.topVideosBy", "delta")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.size", 16)
	v.SetDefault("metrics.enabled", true)
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	v := viper.New()
	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}
