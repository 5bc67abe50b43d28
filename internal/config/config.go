// Package config defines service configuration structures and loading hooks.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// HousekeepingPeriodSeconds sets the featured index rebuild period.
	HousekeepingPeriodSeconds int `koanf:"housekeeping_period_seconds"`

	// FeaturedPageSize is the default featured sample size.
	FeaturedPageSize int `koanf:"featured_page_size"`

	// MaxSubmissionsPerAccount caps live submissions per account.
	MaxSubmissionsPerAccount int `koanf:"max_submissions_per_account"`

	// MinVisibleAverage is the summary suppression floor.
	MinVisibleAverage int `koanf:"min_visible_average"`

	// CheckpointPath enables on-disk checkpointing when non-empty.
	CheckpointPath string `koanf:"checkpoint_path"`

	// CheckpointPeriodSeconds sets the checkpoint write period.
	CheckpointPeriodSeconds int `koanf:"checkpoint_period_seconds"`

	// RestoreWorkerCount sizes the checkpoint restore worker pool.
	RestoreWorkerCount int `koanf:"restore_worker_count"`

	// RestoreQueueSize bounds the restore pipeline queue.
	RestoreQueueSize int `koanf:"restore_queue_size"`

	// RateLimitRPS and RateLimitBurst configure per-client rate limiting.
	// A zero RPS disables limiting.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                  "info",
		Addr:                      ":9080",
		HousekeepingPeriodSeconds: 300,
		FeaturedPageSize:          10,
		MaxSubmissionsPerAccount:  500,
		MinVisibleAverage:         30,
		CheckpointPeriodSeconds:   600,
		RestoreWorkerCount:        4,
		RestoreQueueSize:          10_000,
		RateLimitRPS:              0,
		RateLimitBurst:            20,
	}
}
