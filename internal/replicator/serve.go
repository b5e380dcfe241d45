package replicator

import (
	"context"
	"errors"
	"time"

	"github.com/raoulx24/dirsync/internal/mailbox"
)

// Request asks the serve loop for a replication pass.
type Request struct {
	Reason string // "schedule", "watch", "startup", ...
	At     time.Time
}

// NewRequest stamps a request with the current time.
func NewRequest(reason string) Request {
	return Request{Reason: reason, At: time.Now()}
}

// Serve runs one pass per request taken from mb until ctx is done. Requests
// arriving during a pass collapse into a single follow-up pass.
func (r *Replicator) Serve(ctx context.Context, mb *mailbox.Mailbox[Request]) error {
	for {
		req, ok := mb.Take(ctx)
		if !ok {
			return nil
		}

		r.mu.RLock()
		log := r.log
		r.mu.RUnlock()

		log.Debug("sync requested", "reason", req.Reason, "queued", time.Since(req.At))

		rep, err := r.Run(ctx)
		switch {
		case err == nil:
		case errors.Is(err, ErrIncomplete):
			for _, f := range rep.Failures {
				log.Error("directory not replicated", "run", rep.RunID, "target", f.Target, "error", f.Err)
			}
		case ctx.Err() != nil:
			return nil
		default:
			log.Error("replication failed", "run", rep.RunID, "error", err)
		}
	}
}
