package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/dirsync/internal/app"
	"github.com/raoulx24/dirsync/internal/config"
	"github.com/raoulx24/dirsync/internal/logging"
	"github.com/raoulx24/dirsync/internal/mailbox"
	"github.com/raoulx24/dirsync/internal/replicator"
	"github.com/raoulx24/dirsync/internal/schedule"
	"github.com/raoulx24/dirsync/internal/watcher"
)

func writeConfig(t *testing.T, src, dst string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "source: " + src + "\ntarget: " + dst + "\nworkers: 2\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { isDebug = false })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	src, dst := t.TempDir(), filepath.Join(t.TempDir(), "mirror")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "a", "b"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(src, "c"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a", "file"), []byte("x"), 0o644))

	out, err := execute(t, "run", "--config", writeConfig(t, src, dst))
	require.NoError(t, err)
	assert.Contains(t, out, "4 directories, 4 created, 0 failed")

	for _, p := range []string{"a/b", "c"} {
		st, err := os.Stat(filepath.Join(dst, p))
		require.NoError(t, err)
		assert.True(t, st.IsDir())
	}
	_, err = os.Stat(filepath.Join(dst, "a", "file"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunCommandFailures(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(src, "blocked"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dst, "blocked"), nil, 0o644))

	out, err := execute(t, "run", "--config", writeConfig(t, src, dst))
	require.Error(t, err)
	assert.Contains(t, out, "1 failed")
}

func TestMkdirCommand(t *testing.T) {
	src, dst := t.TempDir(), filepath.Join(t.TempDir(), "x", "y")
	cfg := writeConfig(t, src, dst)

	out, err := execute(t, "mkdir", "--config", cfg, src, dst)
	require.NoError(t, err)
	assert.Contains(t, out, dst)

	st, err := os.Stat(dst)
	require.NoError(t, err)
	assert.True(t, st.IsDir())

	_, err = execute(t, "mkdir", "--config", cfg, src)
	require.Error(t, err)
}

func TestMissingConfig(t *testing.T) {
	_, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestMkdirRejectsForeignBucket(t *testing.T) {
	src := t.TempDir()
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "source: /src\ntarget: s3://archive/dst\ns3:\n  bucket: archive\n  region: eu-west-1\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	_, err := execute(t, "mkdir", "--config", path, src, "s3://other/dst")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match s3.bucket")
}

func TestReloadAppliesLogging(t *testing.T) {
	ctx := context.Background()
	src, dst := t.TempDir(), t.TempDir()
	path := writeConfig(t, src, dst)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	log := logging.NewSwitch(newLogger(cfg.Logging))
	require.False(t, log.Logger().Enabled(ctx, slog.LevelDebug))

	env, err := app.Build(ctx, cfg, log, nil)
	require.NoError(t, err)
	defer env.Close()

	r, err := replicator.New(env.ReplicatorOptions())
	require.NoError(t, err)
	mb := mailbox.New[replicator.Request]()
	sched, err := schedule.New(cfg.Schedule.Cron, mb, log)
	require.NoError(t, err)
	rl := &reloader{
		log:   log,
		env:   env,
		r:     r,
		sched: sched,
		watch: watcher.New(cfg.Source, cfg.Watch, env.Registry, log, mb),
	}

	doc := "source: " + src + "\ntarget: " + dst + "\nlogging:\n  level: debug\n  format: json\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	require.NoError(t, rl.reload(path))
	assert.True(t, log.Logger().Enabled(ctx, slog.LevelDebug))

	require.NoError(t, os.WriteFile(path, []byte("source: [\n"), 0o644))
	require.Error(t, rl.reload(path))
	assert.True(t, log.Logger().Enabled(ctx, slog.LevelDebug))
}
