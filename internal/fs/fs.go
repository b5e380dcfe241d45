// Package fs defines the filesystem abstraction used by dirsync.
// It provides the FS interface, the FileInfo type shared across the system
// and the optional erasure-coding capability.
package fs

import (
	"context"
	"time"
)

type FileInfo struct {
	Path         string
	IsDir        bool
	ModTime      time.Time
	ErasureCoded bool
}

type FS interface {
	Stat(ctx context.Context, path string) (FileInfo, error)

	// Mkdirs creates path and any missing parents. It returns true when the
	// directory exists afterwards, false when the path is taken by something
	// that is not a directory.
	Mkdirs(ctx context.Context, path string) (bool, error)

	ListDir(ctx context.Context, path string) ([]FileInfo, error)
}

// ErasureCoding is implemented by filesystems that store erasure-coding
// policies on directories.
type ErasureCoding interface {
	ErasureCodingPolicyName(ctx context.Context, info FileInfo) (string, error)
	SetErasureCodingPolicy(ctx context.Context, path, policy string) error
}

// PathCapabilities lets an ErasureCoding filesystem restrict support to
// some paths.
type PathCapabilities interface {
	SupportsErasureCoding(path string) bool
}

// ErasureCodingOf returns the erasure-coding handle of fsys when it supports
// erasure coding for path.
func ErasureCodingOf(fsys FS, path string) (ErasureCoding, bool) {
	ec, ok := fsys.(ErasureCoding)
	if !ok {
		return nil, false
	}
	if pc, ok := fsys.(PathCapabilities); ok && !pc.SupportsErasureCoding(path) {
		return nil, false
	}
	return ec, true
}
