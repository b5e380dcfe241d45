// Package watcher monitors the source tree and requests a replication pass
// when its directory structure changes.
package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raoulx24/dirsync/internal/config"
	"github.com/raoulx24/dirsync/internal/fs"
	"github.com/raoulx24/dirsync/internal/fsprobe"
	"github.com/raoulx24/dirsync/internal/logging"
	"github.com/raoulx24/dirsync/internal/mailbox"
	"github.com/raoulx24/dirsync/internal/replicator"
)

// Watcher observes the source location and puts sync requests into the mailbox.
type Watcher struct {
	mu sync.RWMutex

	source   string
	resolver fs.Resolver
	interval time.Duration
	mode     string
	debounce time.Duration

	log logging.Logger

	// signature of the tree at the last request
	lastSig string

	mb *mailbox.Mailbox[replicator.Request]
}

// New creates a watcher for source, resolved through resolver.
func New(source string, cfg config.WatchConfig, resolver fs.Resolver, log logging.Logger, mb *mailbox.Mailbox[replicator.Request]) *Watcher {
	return &Watcher{
		source:   source,
		resolver: resolver,
		interval: cfg.PollInterval,
		mode:     cfg.Mode,
		debounce: cfg.DebounceWindow,
		log:      log,
		mb:       mb,
	}
}

// Start chooses the watching strategy based on config. Mode "none" returns
// immediately.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.RLock()
	mode, source := w.mode, w.source
	w.mu.RUnlock()

	if mode == "" || mode == "none" {
		w.log.Info("watcher disabled")
		return nil
	}

	// baseline, so the first tick does not fire for an unchanged tree
	if sig, err := w.signature(ctx); err == nil {
		w.mu.Lock()
		w.lastSig = sig
		w.mu.Unlock()
	}

	switch mode {
	case "fsnotify":
		return w.StartFsNotify(ctx)

	case "poll":
		w.StartPolling(ctx)
		return nil

	case "auto":
		loc, err := fs.ParseLocation(source)
		if err != nil {
			return err
		}
		res := fsprobe.Probe(loc, 0)
		if res.FsnotifySupported {
			return w.StartFsNotify(ctx)
		}
		w.log.Warn("fsnotify disabled, polling", "reason", res.Reason)
		w.StartPolling(ctx)
		return nil

	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}
