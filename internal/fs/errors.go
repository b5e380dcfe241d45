package fs

import "errors"

// Errors shared by every FS implementation. Implementations wrap them with
// the offending path.
var (
	ErrNotExist      = errors.New("no such file or directory")
	ErrNotDirectory  = errors.New("not a directory")
	ErrUnknownScheme = errors.New("unknown location scheme")
)
