package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/raoulx24/dirsync/internal/fs"
)

// StartFsNotify watches every directory of a local source and triggers
// detect() once events settle for the debounce window.
func (w *Watcher) StartFsNotify(ctx context.Context) error {
	w.mu.RLock()
	source := w.source
	debounce := w.debounce
	w.mu.RUnlock()

	loc, err := fs.ParseLocation(source)
	if err != nil {
		return err
	}
	if loc.Scheme != "file" {
		return fmt.Errorf("fsnotify cannot watch %s locations", loc.Scheme)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addTree(watcher, loc.Path); err != nil {
		return err
	}

	// Channel to request debounce resets
	resetCh := make(chan struct{}, 1)
	defer close(resetCh)

	// Debounce goroutine
	go func() {
		var t *time.Timer
		for range resetCh {
			if t != nil {
				t.Stop()
			}
			t = time.AfterFunc(debounce, func() {
				defer func() {
					if r := recover(); r != nil {
						w.log.Error("detect panic", "panic", r)
					}
				}()
				w.detect(ctx)
			})
		}
		if t != nil {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				w.log.Error("events channel closed")
				return nil
			}

			w.log.Debug("event", "name", ev.Name, "op", ev.Op)

			if ev.Has(fsnotify.Create) {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() {
					if err := addTree(watcher, ev.Name); err != nil {
						w.log.Warn("cannot watch new directory", "path", ev.Name, "error", err)
					}
				}
			}
			if ev.Has(fsnotify.Chmod) {
				continue
			}

			// Non-blocking send to reset debounce
			select {
			case resetCh <- struct{}{}:
			default:
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("fsnotify error", "error", err)
		}
	}
}

// addTree watches root and all directories below it.
func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(p)
	})
}
