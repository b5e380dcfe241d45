package worker

import (
	"github.com/raoulx24/dirsync/internal/fs"
)

// Job is one directory to replicate.
type Job struct {
	Source fs.FileInfo
	Target string // target location
}

// Result is the outcome of a Job. Err is nil when Created is true.
type Result struct {
	Job     Job
	Created bool
	Err     error
}
