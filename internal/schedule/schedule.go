// Package schedule requests replication passes on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/dirsync/internal/logging"
	"github.com/raoulx24/dirsync/internal/mailbox"
	"github.com/raoulx24/dirsync/internal/replicator"
)

// Scheduler puts a sync request into the mailbox on every cron tick.
type Scheduler struct {
	mu   sync.Mutex
	spec string
	c    *cron.Cron
	id   cron.EntryID

	mb  *mailbox.Mailbox[replicator.Request]
	log logging.Logger
}

// New creates a scheduler for spec, a standard five-field cron expression or
// a descriptor such as "@every 15m". An empty spec never fires.
func New(spec string, mb *mailbox.Mailbox[replicator.Request], log logging.Logger) (*Scheduler, error) {
	s := &Scheduler{
		c:   cron.New(),
		mb:  mb,
		log: log,
	}
	if err := s.UpdateConfig(spec); err != nil {
		return nil, err
	}
	return s, nil
}

// UpdateConfig replaces the schedule. The new spec is validated before the
// old entry is removed.
func (s *Scheduler) UpdateConfig(spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if spec == s.spec && s.id != 0 {
		return nil
	}

	var sched cron.Schedule
	if spec != "" {
		var err error
		sched, err = cron.ParseStandard(spec)
		if err != nil {
			return fmt.Errorf("schedule %q: %w", spec, err)
		}
	}

	if s.id != 0 {
		s.c.Remove(s.id)
		s.id = 0
	}
	s.spec = spec
	if sched == nil {
		s.log.Info("schedule disabled")
		return nil
	}

	s.id = s.c.Schedule(sched, cron.FuncJob(s.fire))
	s.log.Info("schedule set", "cron", spec)
	return nil
}

func (s *Scheduler) fire() {
	s.log.Debug("schedule fired")
	s.mb.Put(replicator.NewRequest("schedule"))
}

// Start runs the cron loop until ctx is done and waits for a running tick
// to finish.
func (s *Scheduler) Start(ctx context.Context) {
	s.c.Start()
	<-ctx.Done()
	<-s.c.Stop().Done()
}
