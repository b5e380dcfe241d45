package config

import (
	"time"

	"github.com/raoulx24/dirsync/internal/preserve"
	"github.com/raoulx24/dirsync/internal/retry"
)

// Policy builds the retry policy described by the retry section.
func (r RetryConfig) Policy() retry.Policy {
	p := retry.Policy{
		MaxAttempts: r.MaxAttempts,
		Retriable:   retry.Always,
	}

	if r.RetryOn == "transient" {
		p.Retriable = retry.IsTransient
	}

	if r.Backoff == "constant" {
		p.Backoff = retry.Constant(deref(r.BaseDelay))
	} else {
		p.Backoff = retry.Exponential{Base: deref(r.BaseDelay), Max: deref(r.MaxDelay), Jitter: r.Jitter}
	}
	return p
}

func deref(d *time.Duration) time.Duration {
	if d == nil {
		return 0
	}
	return *d
}

// PreserveSet parses the preserve list. Load has already validated it.
func (c *Config) PreserveSet() preserve.Set {
	s, _ := preserve.Parse(c.Preserve)
	return s
}
