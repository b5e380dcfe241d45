// Package worker creates target directories for replication jobs.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/raoulx24/dirsync/internal/dircreate"
	"github.com/raoulx24/dirsync/internal/fs"
	"github.com/raoulx24/dirsync/internal/logging"
	"github.com/raoulx24/dirsync/internal/retry"
)

// ErrNotCreated is returned when the target path is taken by a non-directory.
var ErrNotCreated = errors.New("directory could not be created")

// Worker runs the directory create action for each job.
type Worker struct {
	exec     *retry.Executor
	tctx     *dircreate.Context
	sourceFS fs.FS
	log      logging.Logger
}

// New creates a worker reading source statuses from sourceFS.
func New(exec *retry.Executor, tctx *dircreate.Context, sourceFS fs.FS, log logging.Logger) *Worker {
	log.Debug("creating worker")
	return &Worker{
		exec:     exec,
		tctx:     tctx,
		sourceFS: sourceFS,
		log:      log,
	}
}

// Handle creates the job's target directory.
func (w *Worker) Handle(ctx context.Context, job Job) Result {
	src := job.Source
	created, err := dircreate.Create(ctx, w.exec, dircreate.Args{
		Target:   job.Target,
		Context:  w.tctx,
		Source:   &src,
		SourceFS: w.sourceFS,
	})
	if err != nil {
		return Result{Job: job, Err: err}
	}
	if !created {
		return Result{Job: job, Err: fmt.Errorf("%s: %w", job.Target, ErrNotCreated)}
	}

	w.log.Debug("directory created", "source", job.Source.Path, "target", job.Target)
	return Result{Job: job, Created: true}
}
