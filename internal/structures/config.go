package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	Backend       string `yaml:"backend" validate:"required|in:file,sqlite"`
	Dir           string `yaml:"dir" validate:"required"`
	SQLitePath    string `yaml:"sqlitePath"`
	Compress      bool   `yaml:"compress"`
	DashboardPath string `yaml:"dashboardPath" validate:"required"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required"`
}

// QuotaConfig describes the credential pool and per-operation costs.
// ResetAt is the provider's daily quota reset as HH:MM in ResetTimezone.
type QuotaConfig struct {
	Keys             []string `yaml:"keys"`
	EnvPrefix        string   `yaml:"envPrefix"`
	DailyLimit       int64    `yaml:"dailyLimit" validate:"required|min:1"`
	LowPriorityRatio float64  `yaml:"lowPriorityRatio"`
	ErrorThreshold   int      `yaml:"errorThreshold" validate:"required|min:1"`
	ListCost         int64    `yaml:"listCost"`
	SearchCost       int64    `yaml:"searchCost"`
	ResetAt          string   `yaml:"resetAt"`
	ResetTimezone    string   `yaml:"resetTimezone"`
}

type FetcherConfig struct {
	BatchSize      int           `yaml:"batchSize" validate:"required|min:1|max:50"`
	Delay          time.Duration `yaml:"delay"`
	MaxConcurrency int           `yaml:"maxConcurrency" validate:"required|min:1|max:10"`
	Timeout        time.Duration `yaml:"timeout"`
	APIBaseURL     string        `yaml:"apiBaseURL" validate:"required"`
	FeedBaseURL    string        `yaml:"feedBaseURL"`
	SiteBaseURL    string        `yaml:"siteBaseURL"`
}

type ModeConfig struct {
	Tiers            []string `yaml:"tiers"`
	VideosPerChannel int      `yaml:"videosPerChannel"`
	Discovery        string   `yaml:"discovery"`
	FetchChannels    bool     `yaml:"fetchChannels"`
	Search           bool     `yaml:"search"`
	ForceRefresh     []string `yaml:"forceRefresh"`
}

type CollectionConfig struct {
	Interval       time.Duration            `yaml:"interval" validate:"required|min:1"`
	DefaultMode    string                   `yaml:"defaultMode" validate:"required"`
	TargetsFile    string                   `yaml:"targetsFile" validate:"required"`
	SearchQueries  []string                 `yaml:"searchQueries"`
	SearchWindow   time.Duration            `yaml:"searchWindow"`
	VideoRetention time.Duration            `yaml:"videoRetention"`
	Modes          map[string]ModeConfig    `yaml:"modes"`
	TierRefresh    map[string]time.Duration `yaml:"tierRefresh"`
}

type ClassifierConfig struct {
	ShortMaxSeconds    int      `yaml:"shortMaxSeconds"`
	ExtendedMaxSeconds int      `yaml:"extendedMaxSeconds"`
	PortraitRatio      float64  `yaml:"portraitRatio"`
	Markers            []string `yaml:"markers"`
}

type AnalysisConfig struct {
	SpikeWindow            time.Duration `yaml:"spikeWindow"`
	SpikeMinDelta          int64         `yaml:"spikeMinDelta"`
	SpikeLimit             int           `yaml:"spikeLimit"`
	AboveAverageMinSamples int           `yaml:"aboveAverageMinSamples"`
	AboveAverageMultiplier float64       `yaml:"aboveAverageMultiplier"`
	AboveAverageMinViews   int64         `yaml:"aboveAverageMinViews"`
	AboveAverageLimit      int           `yaml:"aboveAverageLimit"`
	TopN                   int           `yaml:"topN"`
	TopVideosBy            string        `yaml:"topVideosBy" validate:"in:delta,views"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server           `yaml:"webServer"`
	Persistence Persistence      `yaml:"persistence"`
	Logger      LoggerConfig     `yaml:"logger"`
	Quota       QuotaConfig      `yaml:"quota"`
	Fetcher     FetcherConfig    `yaml:"fetcher"`
	Collection  CollectionConfig `yaml:"collection"`
	Classifier  ClassifierConfig `yaml:"classifier"`
	Analysis    AnalysisConfig   `yaml:"analysis"`
	Cache       CacheConfig      `yaml:"cache"`
	Metrics     MetricsConfig    `yaml:"metrics"`
}
