package logging

import (
	"log/slog"
	"sync/atomic"
)

// Switch is a Logger whose underlying logger can be replaced while in use,
// so components keep logging through the same value across a config reload.
type Switch struct {
	cur atomic.Pointer[slog.Logger]
}

func NewSwitch(l *slog.Logger) *Switch {
	s := &Switch{}
	s.Set(l)
	return s
}

// Set replaces the underlying logger.
func (s *Switch) Set(l *slog.Logger) { s.cur.Store(l) }

// Logger returns the current underlying logger.
func (s *Switch) Logger() *slog.Logger { return s.cur.Load() }

func (s *Switch) Debug(msg string, args ...any) { s.cur.Load().Debug(msg, args...) }
func (s *Switch) Info(msg string, args ...any)  { s.cur.Load().Info(msg, args...) }
func (s *Switch) Warn(msg string, args ...any)  { s.cur.Load().Warn(msg, args...) }
func (s *Switch) Error(msg string, args ...any) { s.cur.Load().Error(msg, args...) }
