package watcher

import (
	"context"

	"github.com/raoulx24/dirsync/internal/replicator"
)

// detect requests a sync if the tree signature changed since the last one.
func (w *Watcher) detect(ctx context.Context) {
	sig, err := w.signature(ctx)
	if err != nil {
		w.log.Warn("scanning source failed", "error", err)
		return
	}

	w.mu.Lock()
	changed := sig != w.lastSig
	w.lastSig = sig
	w.mu.Unlock()

	if !changed {
		return
	}

	w.log.Debug("source tree changed", "signature", sig)
	w.mb.Put(replicator.NewRequest("watch"))
}
