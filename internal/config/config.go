package config

import "time"

type Config struct {
	// Source and Target are locations: a bare path, ns:///path or s3://bucket/path.
	Source string `yaml:"source" validate:"required"`
	Target string `yaml:"target" validate:"required"`

	// Preserve lists attributes to carry over, by name or letter ("e").
	Preserve []string `yaml:"preserve"`

	Workers   int             `yaml:"workers" validate:"gte=1,lte=256"`
	Retry     RetryConfig     `yaml:"retry"`
	Namespace NamespaceConfig `yaml:"namespace"`
	S3        S3Config        `yaml:"s3"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Watch     WatchConfig     `yaml:"watch"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type RetryConfig struct {
	MaxAttempts int           `yaml:"maxAttempts" validate:"gte=1"`
	Backoff     string        `yaml:"backoff" validate:"oneof=constant exponential"`
	BaseDelay   *time.Duration `yaml:"baseDelay" validate:"omitempty,gte=0"` // nil = default, 0 = no wait
	MaxDelay    *time.Duration `yaml:"maxDelay" validate:"omitempty,gte=0"`  // nil = default, 0 = uncapped
	Jitter      bool          `yaml:"jitter"`
	RetryOn     string        `yaml:"retryOn" validate:"oneof=all transient"` // "all", "transient"
}

// NamespaceConfig backs ns:// locations.
type NamespaceConfig struct {
	Dir      string `yaml:"dir"`
	InMemory bool   `yaml:"inMemory"`
}

// S3Config backs s3:// locations.
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	KeyPrefix       string `yaml:"keyPrefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint" validate:"omitempty,url"`
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
}

type ScheduleConfig struct {
	Cron string `yaml:"cron"` // e.g. "@every 15m", empty disables
}

type WatchConfig struct {
	Mode           string        `yaml:"mode" validate:"oneof=none auto poll fsnotify"`
	PollInterval   time.Duration `yaml:"pollInterval" validate:"gte=0"`
	DebounceWindow time.Duration `yaml:"debounceWindow" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen" validate:"omitempty,hostname_port"` // e.g. ":9100", empty disables
}
