package watcher

import (
	"github.com/raoulx24/dirsync/internal/config"
	"github.com/raoulx24/dirsync/internal/fs"
)

// UpdateConfig updates watcher fields atomically for hot-reload. A running
// strategy keeps its mode and watched directories until restarted.
func (w *Watcher) UpdateConfig(source string, cfg config.WatchConfig, resolver fs.Resolver) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if source != w.source {
		w.lastSig = ""
	}

	w.source = source
	w.resolver = resolver
	w.interval = cfg.PollInterval
	w.mode = cfg.Mode
	w.debounce = cfg.DebounceWindow
}
