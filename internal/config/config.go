// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer sources.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// RiotAPIKey authenticates outbound Riot API calls.
	RiotAPIKey string `koanf:"riot_api_key"`

	// RiotMaxConcurrent bounds concurrent outbound Riot API requests.
	RiotMaxConcurrent int `koanf:"riot_max_concurrent"`

	// RiotRequestsPerSec smooths the outbound request rate on top of the
	// concurrency bound. Zero disables smoothing.
	RiotRequestsPerSec float64 `koanf:"riot_requests_per_sec"`

	// MaxConcurrentAnalyses bounds analyses running process-wide.
	MaxConcurrentAnalyses int `koanf:"max_concurrent_analyses"`

	// MatchHistoryCount is how many recent ranked matches to ingest per analysis.
	MatchHistoryCount int `koanf:"match_history_count"`

	// LaneLeadTargetMinute is the timeline offset for lane-lead sampling.
	LaneLeadTargetMinute int `koanf:"lane_lead_target_minute"`

	// LaneLeadMatchLimit caps how many matches feed the lane-lead average.
	LaneLeadMatchLimit int `koanf:"lane_lead_match_limit"`

	// CacheBackend selects the immutable-response cache: "memory" or "redis".
	CacheBackend string `koanf:"cache_backend"`

	// CacheSize bounds the in-memory cache entry count.
	CacheSize int `koanf:"cache_size"`

	// RedisAddr is used when CacheBackend is "redis".
	RedisAddr string `koanf:"redis_addr"`

	// DDragonVersion pins the static-data version. Empty or "latest"
	// resolves the current version from upstream.
	DDragonVersion string `koanf:"ddragon_version"`

	// QueuePollIntervalMS is how often a queued stream re-reports its position.
	QueuePollIntervalMS int `koanf:"queue_poll_interval_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		Addr:                  ":8000",
		RiotMaxConcurrent:     5,
		RiotRequestsPerSec:    18,
		MaxConcurrentAnalyses: 3,
		MatchHistoryCount:     20,
		LaneLeadTargetMinute:  14,
		LaneLeadMatchLimit:    21,
		CacheBackend:          "memory",
		CacheSize:             512,
		RedisAddr:             "localhost:6379",
		DDragonVersion:        "latest",
		QueuePollIntervalMS:   1500,
	}
}
