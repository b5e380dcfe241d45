package replicator

import (
	"context"

	"github.com/raoulx24/dirsync/internal/fs"
)

// walk visits root and every directory below it breadth-first, so parents
// are emitted before their children. visit returning false stops the walk.
// A directory that cannot be listed is reported to onErr and skipped.
func walk(ctx context.Context, fsys fs.FS, root fs.FileInfo, visit func(fs.FileInfo) bool, onErr func(fs.FileInfo, error)) error {
	pending := []fs.FileInfo{root}

	for len(pending) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		dir := pending[0]
		pending = pending[1:]

		if !visit(dir) {
			return ctx.Err()
		}

		children, err := fsys.ListDir(ctx, dir.Path)
		if err != nil {
			onErr(dir, err)
			continue
		}
		for _, c := range children {
			if c.IsDir {
				pending = append(pending, c)
			}
		}
	}
	return nil
}
