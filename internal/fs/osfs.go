package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// OSFS is the FS backed by the local OS filesystem. It has no notion of
// erasure coding.
type OSFS struct {
	perm os.FileMode
}

func New() *OSFS {
	return &OSFS{perm: 0o755}
}

func (o *OSFS) Stat(ctx context.Context, path string) (FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return FileInfo{}, err
	}

	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return FileInfo{}, fmt.Errorf("stat %s: %w", path, ErrNotExist)
		}
		return FileInfo{}, err
	}

	return FileInfo{
		Path:    path,
		IsDir:   st.IsDir(),
		ModTime: st.ModTime(),
	}, nil
}

func (o *OSFS) Mkdirs(ctx context.Context, path string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	err := os.MkdirAll(path, o.perm)
	if err == nil {
		return true, nil
	}

	// a file sits on the path or on one of its parents
	if errors.Is(err, syscall.ENOTDIR) {
		return false, nil
	}
	if errors.Is(err, os.ErrExist) {
		if st, serr := os.Stat(path); serr == nil && !st.IsDir() {
			return false, nil
		}
	}
	return false, err
}

func (o *OSFS) ListDir(ctx context.Context, path string) ([]FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("list %s: %w", path, ErrNotExist)
		}
		if errors.Is(err, syscall.ENOTDIR) {
			return nil, fmt.Errorf("list %s: %w", path, ErrNotDirectory)
		}
		return nil, err
	}

	out := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		out = append(out, FileInfo{
			Path:    filepath.Join(path, e.Name()),
			IsDir:   e.IsDir(),
			ModTime: info.ModTime(),
		})
	}
	return out, nil
}
