// Package retry runs actions under a bounded retry policy with backoff.
package retry

import (
	"context"
	"time"

	"github.com/raoulx24/dirsync/internal/logging"
)

// SleepFunc waits for d or until ctx is done, whichever comes first.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Observer is notified after every attempt. err is nil on success.
type Observer interface {
	ObserveAttempt(description string, attempt int, err error)
}

// Executor runs actions under a Policy.
type Executor struct {
	policy   Policy
	log      logging.Logger
	sleep    SleepFunc
	observer Observer
}

type Option func(*Executor)

// WithLogger sets the logger used for per-attempt records.
func WithLogger(l logging.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// WithSleep replaces the backoff wait.
func WithSleep(s SleepFunc) Option {
	return func(e *Executor) { e.sleep = s }
}

// WithObserver registers an attempt observer.
func WithObserver(o Observer) Option {
	return func(e *Executor) { e.observer = o }
}

// New creates an executor for the given policy.
func New(p Policy, opts ...Option) (*Executor, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	e := &Executor{
		policy: p,
		log:    logging.Discard(),
		sleep:  Sleep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Execute runs a until it succeeds, fails with a non-retriable error, or the
// policy's attempt budget is spent. In the last case the returned error is an
// *ExhaustedError wrapping the final failure.
func Execute[T any](ctx context.Context, e *Executor, a Action[T]) (T, error) {
	var zero T
	desc := a.Description()

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		res, err := a.Execute(ctx)
		if e.observer != nil {
			e.observer.ObserveAttempt(desc, attempt, err)
		}

		if err == nil {
			e.log.Debug("attempt succeeded", "action", desc, "attempt", attempt)
			return res, nil
		}

		if !e.policy.retriable(err) {
			e.log.Error("attempt failed permanently", "action", desc, "attempt", attempt, "error", err)
			return zero, err
		}

		if attempt >= e.policy.MaxAttempts {
			e.log.Error("attempts exhausted", "action", desc, "attempt", attempt, "error", err)
			return zero, &ExhaustedError{Description: desc, Attempts: attempt, Err: err}
		}

		delay := e.policy.delay(attempt)
		e.log.Warn("attempt failed, retrying", "action", desc, "attempt", attempt, "delay", delay, "error", err)

		if err := e.sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}
