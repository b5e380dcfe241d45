package watcher

import (
	"context"
	"encoding/hex"
	"hash/fnv"
	"sort"
	"strconv"

	"github.com/raoulx24/dirsync/internal/fs"
)

// signature hashes every directory path and modification time under the
// source. Files are ignored since only directories are replicated.
func (w *Watcher) signature(ctx context.Context) (string, error) {
	w.mu.RLock()
	source, resolver := w.source, w.resolver
	w.mu.RUnlock()

	fsys, loc, err := resolver.Resolve(source)
	if err != nil {
		return "", err
	}
	root, err := fsys.Stat(ctx, loc.Path)
	if err != nil {
		return "", err
	}

	var lines []string
	pending := []fs.FileInfo{root}
	for len(pending) > 0 {
		dir := pending[0]
		pending = pending[1:]
		lines = append(lines, dir.Path+"\x00"+strconv.FormatInt(dir.ModTime.UnixNano(), 10))

		children, err := fsys.ListDir(ctx, dir.Path)
		if err != nil {
			return "", err
		}
		for _, c := range children {
			if c.IsDir {
				pending = append(pending, c)
			}
		}
	}
	sort.Strings(lines)

	h := fnv.New64a()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
