// Package replicator mirrors a source directory tree onto a target location.
package replicator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/raoulx24/dirsync/internal/dircreate"
	"github.com/raoulx24/dirsync/internal/fs"
	"github.com/raoulx24/dirsync/internal/logging"
	"github.com/raoulx24/dirsync/internal/retry"
	"github.com/raoulx24/dirsync/internal/worker"
)

// ErrIncomplete is returned by Run when at least one directory failed.
var ErrIncomplete = errors.New("replication incomplete")

// Recorder receives per-directory and per-run observations.
type Recorder interface {
	ObserveDirectory(err error) // nil when the directory was created
	ObserveRun(d time.Duration)
}

type Options struct {
	Source   string // source location
	Target   string // target location
	Resolver fs.Resolver
	Executor *retry.Executor
	Context  *dircreate.Context
	Workers  int
	Log      logging.Logger
	Recorder Recorder
}

// Failure names a directory that could not be replicated.
type Failure struct {
	Source string
	Target string
	Err    error
}

// Report summarises one pass.
type Report struct {
	RunID       string
	Directories int
	Created     int
	Failures    []Failure
	Duration    time.Duration
}

type Replicator struct {
	mu   sync.RWMutex
	opts Options
	log  logging.Logger
}

func New(opts Options) (*Replicator, error) {
	if err := check(opts); err != nil {
		return nil, err
	}
	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}
	return &Replicator{opts: opts, log: log}, nil
}

func check(opts Options) error {
	switch {
	case opts.Source == "" || opts.Target == "":
		return fmt.Errorf("replicator: source and target are required")
	case opts.Resolver == nil:
		return fmt.Errorf("replicator: resolver is required")
	case opts.Executor == nil:
		return fmt.Errorf("replicator: executor is required")
	case opts.Context == nil:
		return fmt.Errorf("replicator: action context is required")
	}
	return nil
}

// UpdateConfig hot-reloads the options used by the next pass.
func (r *Replicator) UpdateConfig(opts Options) error {
	if err := check(opts); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if opts.Log == nil {
		opts.Log = r.log
	}
	r.opts = opts
	r.log = opts.Log
	return nil
}

// Run replicates every directory under the source onto the target. Failed
// directories do not stop the pass; they are listed in the report and make
// Run return ErrIncomplete.
func (r *Replicator) Run(ctx context.Context) (Report, error) {
	r.mu.RLock()
	opts, log := r.opts, r.log
	r.mu.RUnlock()

	start := time.Now()
	rep := Report{RunID: uuid.NewString()}
	log.Info("replication started",
		"run", rep.RunID,
		"source", opts.Source,
		"target", opts.Target,
		"preserve", opts.Context.Preserve.String(),
	)

	srcFS, srcLoc, err := opts.Resolver.Resolve(opts.Source)
	if err != nil {
		return rep, fmt.Errorf("resolving source: %w", err)
	}
	dstLoc, err := fs.ParseLocation(opts.Target)
	if err != nil {
		return rep, fmt.Errorf("parsing target: %w", err)
	}

	root, err := srcFS.Stat(ctx, srcLoc.Path)
	if err != nil {
		return rep, fmt.Errorf("stat source root: %w", err)
	}
	if !root.IsDir {
		return rep, fmt.Errorf("source root %s: %w", opts.Source, fs.ErrNotDirectory)
	}

	workers := max(opts.Workers, 1)
	q := worker.NewQueue(workers * 4)
	w := worker.New(opts.Executor, opts.Context, srcFS, log)

	var mu sync.Mutex
	fail := func(f Failure) {
		mu.Lock()
		rep.Failures = append(rep.Failures, f)
		mu.Unlock()
		if opts.Recorder != nil {
			opts.Recorder.ObserveDirectory(f.Err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer q.Close()
		return walk(gctx, srcFS, root, func(info fs.FileInfo) bool {
			return q.Push(gctx, worker.Job{Source: info, Target: mapTarget(srcLoc.Path, info.Path, dstLoc)})
		}, func(info fs.FileInfo, err error) {
			log.Warn("listing failed", "run", rep.RunID, "source", info.Path, "error", err)
			fail(Failure{Source: info.Path, Target: mapTarget(srcLoc.Path, info.Path, dstLoc), Err: err})
		})
	})
	g.Go(func() error {
		return worker.RunPool(gctx, workers, w, q, func(res worker.Result) {
			mu.Lock()
			rep.Directories++
			if res.Created {
				rep.Created++
			}
			mu.Unlock()

			if res.Err != nil {
				fail(Failure{Source: res.Job.Source.Path, Target: res.Job.Target, Err: res.Err})
				return
			}
			if opts.Recorder != nil {
				opts.Recorder.ObserveDirectory(nil)
			}
		})
	})

	err = g.Wait()
	rep.Duration = time.Since(start)
	if opts.Recorder != nil {
		opts.Recorder.ObserveRun(rep.Duration)
	}
	if err != nil {
		return rep, err
	}

	log.Info("replication finished",
		"run", rep.RunID,
		"directories", rep.Directories,
		"created", rep.Created,
		"failed", len(rep.Failures),
		"duration", rep.Duration,
	)

	if len(rep.Failures) > 0 {
		return rep, fmt.Errorf("%w: %d directories failed", ErrIncomplete, len(rep.Failures))
	}
	return rep, nil
}

// mapTarget places a source path at the same relative position under the target.
func mapTarget(srcRoot, srcPath string, dst fs.Location) string {
	root := strings.TrimSuffix(filepath.ToSlash(srcRoot), "/")
	rel := strings.TrimPrefix(strings.TrimPrefix(filepath.ToSlash(srcPath), root), "/")
	if rel == "" {
		return dst.String()
	}
	return dst.Join(rel).String()
}
