// Package fsprobe checks whether fsnotify delivers events for a source
// location. Only local directories can be watched; everything else is polled.
package fsprobe

import (
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/raoulx24/dirsync/internal/fs"
)

// DefaultTimeout bounds how long Probe waits for the test event.
const DefaultTimeout = 200 * time.Millisecond

// Result reports whether fsnotify is usable and why.
type Result struct {
	FsnotifySupported bool   // true if events are delivered
	Reason            string // explanation when unsupported
}

func unsupported(format string, args ...any) Result {
	return Result{Reason: fmt.Sprintf(format, args...)}
}

// Probe tests whether fsnotify reports a directory being created in loc.
// A zero timeout means DefaultTimeout.
func Probe(loc fs.Location, timeout time.Duration) Result {
	if loc.Scheme != "file" {
		return unsupported("%s locations are not local", loc.Scheme)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	st, err := os.Stat(loc.Path)
	if err != nil {
		return unsupported("stat failed: %v", err)
	}
	if !st.IsDir() {
		return unsupported("not a directory")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return unsupported("fsnotify unavailable: %v", err)
	}
	defer w.Close()

	if err := w.Add(loc.Path); err != nil {
		return unsupported("cannot watch directory: %v", err)
	}

	// directory events are what the watcher reacts to
	tmp, err := os.MkdirTemp(loc.Path, ".fsprobe-")
	if err != nil {
		return unsupported("cannot create probe directory: %v", err)
	}
	defer os.Remove(tmp)

	deadline := time.After(timeout)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return unsupported("event channel closed")
			}
			if ev.Name == tmp && ev.Has(fsnotify.Create) {
				return Result{FsnotifySupported: true}
			}
		case err := <-w.Errors:
			return unsupported("fsnotify error: %v", err)
		case <-deadline:
			return unsupported("no events received within %s", timeout)
		}
	}
}
