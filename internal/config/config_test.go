package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/dirsync/internal/preserve"
	"github.com/raoulx24/dirsync/internal/retry"
)

const fullConfig = `
source: ns:///warehouse
target: s3://archive/warehouse
preserve: [erasure-coding-policy, t]
workers: 8
retry:
  maxAttempts: 5
  backoff: constant
  baseDelay: 250ms
namespace:
  dir: $(DIRSYNC_TEST_NS_DIR)
s3:
  bucket: archive
  region: eu-west-1
  endpoint: http://localhost:9000
schedule:
  cron: "@every 15m"
watch:
  mode: poll
  pollInterval: 5s
logging:
  level: debug
  format: json
metrics:
  listen: ":9100"
`

func TestParseFull(t *testing.T) {
	t.Setenv("DIRSYNC_TEST_NS_DIR", "/var/lib/dirsync")

	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "ns:///warehouse", cfg.Source)
	assert.Equal(t, "s3://archive/warehouse", cfg.Target)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "/var/lib/dirsync", cfg.Namespace.Dir)
	assert.Equal(t, 5*time.Second, cfg.Watch.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.Watch.DebounceWindow)
	assert.Equal(t, "@every 15m", cfg.Schedule.Cron)

	p := cfg.Retry.Policy()
	assert.Equal(t, 5, p.MaxAttempts)
	assert.Equal(t, retry.Constant(250*time.Millisecond), p.Backoff)

	s := cfg.PreserveSet()
	assert.True(t, s.Has(preserve.ErasureCodingPolicy))
	assert.True(t, s.Has(preserve.Times))
}

func TestDefaults(t *testing.T) {
	cfg, err := Parse([]byte("source: /src\ntarget: /dst\n"))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "none", cfg.Watch.Mode)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Empty(t, cfg.PreserveSet().String())

	p := cfg.Retry.Policy()
	assert.Equal(t, 4, p.MaxAttempts)
	assert.Equal(t, retry.Exponential{Base: 100 * time.Millisecond, Max: 10 * time.Second}, p.Backoff)
}

func TestExplicitZeroDelays(t *testing.T) {
	cfg, err := Parse([]byte("source: /src\ntarget: /dst\nretry:\n  backoff: constant\n  baseDelay: 0s\n"))
	require.NoError(t, err)
	assert.Equal(t, retry.Constant(0), cfg.Retry.Policy().Backoff)

	cfg, err = Parse([]byte("source: /src\ntarget: /dst\nretry:\n  baseDelay: 1s\n  maxDelay: 0s\n"))
	require.NoError(t, err)
	assert.Equal(t, retry.Exponential{Base: time.Second}, cfg.Retry.Policy().Backoff)
}

func TestRetryOnTransient(t *testing.T) {
	cfg, err := Parse([]byte("source: /src\ntarget: /dst\nretry:\n  retryOn: transient\n"))
	require.NoError(t, err)

	p := cfg.Retry.Policy()
	require.NotNil(t, p.Retriable)
	assert.False(t, p.Retriable(os.ErrPermission))
}

func TestValidationErrors(t *testing.T) {
	tests := map[string]string{
		"missing target":    "source: /src\n",
		"bad workers":       "source: /src\ntarget: /dst\nworkers: 1000\n",
		"bad backoff":       "source: /src\ntarget: /dst\nretry:\n  backoff: linear\n",
		"bad watch mode":    "source: /src\ntarget: /dst\nwatch:\n  mode: inotify\n",
		"bad scheme":        "source: hdfs://nn/src\ntarget: /dst\n",
		"ns without dir":    "source: ns:///src\ntarget: /dst\n",
		"s3 without bucket": "source: /src\ntarget: s3://b/dst\ns3:\n  region: us-east-1\n",
		"s3 without region": "source: /src\ntarget: s3://b/dst\ns3:\n  bucket: b\n",
		"s3 other bucket":   "source: /src\ntarget: s3://other/dst\ns3:\n  bucket: b\n  region: us-east-1\n",
		"bad preserve":      "source: /src\ntarget: /dst\npreserve: [colour]\n",
		"bad cron":          "source: /src\ntarget: /dst\nschedule:\n  cron: every day\n",
		"bad delays":        "source: /src\ntarget: /dst\nretry:\n  baseDelay: 5s\n  maxDelay: 1s\n",
		"bad yaml":          "source: [\n",
		"unknown key":       "source: /src\ntarget: /dst\nworkerz: 3\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestInMemoryNamespace(t *testing.T) {
	_, err := Parse([]byte("source: ns:///src\ntarget: /dst\nnamespace:\n  inMemory: true\n"))
	require.NoError(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: /src\ntarget: /dst\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/dst", cfg.Target)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("DIRSYNC_TEST_HOST", "nn1")
	assert.Equal(t, "ns://nn1/x", expandEnvVars("ns://$(DIRSYNC_TEST_HOST)/x"))
	assert.Equal(t, "/x", expandEnvVars("$(DIRSYNC_TEST_UNSET_VAR)/x"))
	assert.Equal(t, "ns://nn1/x", expandEnvVars("ns://$(DIRSYNC_TEST_HOST:-nn2)/x"))
	assert.Equal(t, "/data/x", expandEnvVars("$(DIRSYNC_TEST_UNSET_VAR:-/data)/x"))
}
