package config

import "time"

// ApplyDefaults fills every unset field.
func ApplyDefaults(cfg *Config) {
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}

	r := &cfg.Retry
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 4
	}
	if r.Backoff == "" {
		r.Backoff = "exponential"
	}
	// explicit zeros are kept
	if r.BaseDelay == nil {
		r.BaseDelay = durationPtr(100 * time.Millisecond)
	}
	if r.MaxDelay == nil {
		r.MaxDelay = durationPtr(10 * time.Second)
	}
	if r.RetryOn == "" {
		r.RetryOn = "all"
	}

	if cfg.Watch.Mode == "" {
		cfg.Watch.Mode = "none"
	}
	if cfg.Watch.PollInterval == 0 {
		cfg.Watch.PollInterval = 30 * time.Second
	}
	if cfg.Watch.DebounceWindow == 0 {
		cfg.Watch.DebounceWindow = 2 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}
