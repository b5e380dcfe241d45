package mailbox

import (
	"context"
	"sync"
)

// Mailbox is a single-slot buffer where the latest job always wins.
// It is NOT a queue. It holds at most one pending job.
// Put() overwrites any existing job. Take() blocks until a job is available.
type Mailbox[T any] struct {
	mu     sync.Mutex
	job    *T
	signal chan struct{}
}

// New creates an empty mailbox.
func New[T any]() *Mailbox[T] {
	return &Mailbox[T]{signal: make(chan struct{}, 1)}
}

// Put stores a job in the mailbox, replacing any existing job.
// It never blocks.
func (m *Mailbox[T]) Put(j T) {
	m.mu.Lock()
	m.job = &j
	m.mu.Unlock()

	// wake up a waiting taker
	select {
	case m.signal <- struct{}{}:
	default:
	}
}

// Take blocks until a job is available or ctx is done, then returns it and
// clears the slot.
func (m *Mailbox[T]) Take(ctx context.Context) (T, bool) {
	for {
		if j := m.TryTake(); j != nil {
			return *j, true
		}

		select {
		case <-m.signal:
		case <-ctx.Done():
			var zero T
			return zero, false
		}
	}
}

// TryTake returns the job if present, or nil if empty.
// It never blocks.
func (m *Mailbox[T]) TryTake() *T {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.job == nil {
		return nil
	}

	j := m.job
	m.job = nil
	return j
}
