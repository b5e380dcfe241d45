package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}

	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), "level %q", name)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Format: "json"}, &buf)

	log.Debug("hidden")
	log.Info("directory created", "target", "/dst/data")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "directory created", rec["msg"])
	assert.Equal(t, "/dst/data", rec["target"])
}

func TestNewTextHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Format: "text"}, &buf)

	log.Info("skipped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestDiscardSatisfiesLogger(t *testing.T) {
	var l Logger = Discard()
	l.Error("nothing", "k", "v")
}

func TestSwitch(t *testing.T) {
	var before, after bytes.Buffer
	s := NewSwitch(New(Options{Level: "info", Format: "json"}, &before))

	var l Logger = s
	l.Debug("hidden")
	l.Info("first")

	s.Set(New(Options{Level: "debug", Format: "json"}, &after))
	l.Debug("second")

	assert.Contains(t, before.String(), `"msg":"first"`)
	assert.NotContains(t, before.String(), "hidden")
	assert.NotContains(t, before.String(), "second")
	assert.Contains(t, after.String(), `"msg":"second"`)
}
