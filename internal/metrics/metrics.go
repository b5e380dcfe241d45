// Package metrics exports replication counters to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/raoulx24/dirsync/internal/dircreate"
	"github.com/raoulx24/dirsync/internal/retry"
)

// Collector implements retry.Observer and dircreate.Observer.
type Collector struct {
	reg *prometheus.Registry

	// Attempts counts action attempts by outcome (success, failure)
	Attempts *prometheus.CounterVec

	// Directories counts directories by result (created, failed)
	Directories *prometheus.CounterVec

	// Exhausted counts directories that failed after every retry attempt
	Exhausted prometheus.Counter

	// ErasureCoding counts erasure-coding decisions
	ErasureCoding *prometheus.CounterVec

	// Runs tracks replication pass duration
	Runs prometheus.Histogram
}

func New() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Collector{
		reg: reg,
		Attempts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dirsync_attempts_total",
			Help: "Total number of directory create attempts",
		}, []string{"outcome"}),
		Directories: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dirsync_directories_total",
			Help: "Total number of directories processed",
		}, []string{"result"}),
		Exhausted: f.NewCounter(prometheus.CounterOpts{
			Name: "dirsync_retries_exhausted_total",
			Help: "Total number of directories that ran out of retry attempts",
		}),
		ErasureCoding: f.NewCounterVec(prometheus.CounterOpts{
			Name: "dirsync_erasure_coding_decisions_total",
			Help: "Total number of erasure coding policy decisions",
		}, []string{"decision"}),
		Runs: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "dirsync_run_duration_seconds",
			Help:    "Replication pass duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
	}
}

func (c *Collector) ObserveAttempt(_ string, _ int, err error) {
	if err != nil {
		c.Attempts.WithLabelValues("failure").Inc()
		return
	}
	c.Attempts.WithLabelValues("success").Inc()
}

func (c *Collector) ObserveErasureCoding(_ string, d dircreate.Decision) {
	c.ErasureCoding.WithLabelValues(string(d)).Inc()
}

// ObserveDirectory records one replicated directory; err is nil when it was created.
func (c *Collector) ObserveDirectory(err error) {
	if err == nil {
		c.Directories.WithLabelValues("created").Inc()
		return
	}
	c.Directories.WithLabelValues("failed").Inc()

	var ex *retry.ExhaustedError
	if errors.As(err, &ex) {
		c.Exhausted.Inc()
	}
}

func (c *Collector) ObserveRun(d time.Duration) {
	c.Runs.Observe(d.Seconds())
}

// Handler serves the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}
