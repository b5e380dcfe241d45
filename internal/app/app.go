// Package app assembles filesystems, the retry executor and the replicator
// from a loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/raoulx24/dirsync/internal/config"
	"github.com/raoulx24/dirsync/internal/dircreate"
	"github.com/raoulx24/dirsync/internal/fs"
	"github.com/raoulx24/dirsync/internal/fs/nsfs"
	"github.com/raoulx24/dirsync/internal/fs/s3fs"
	"github.com/raoulx24/dirsync/internal/logging"
	"github.com/raoulx24/dirsync/internal/metrics"
	"github.com/raoulx24/dirsync/internal/replicator"
	"github.com/raoulx24/dirsync/internal/retry"
)

// Env is everything built from one configuration.
type Env struct {
	Registry *fs.Registry
	Executor *retry.Executor
	Action   *dircreate.Context

	cfg     *config.Config
	log     logging.Logger
	metrics *metrics.Collector
	closers []io.Closer
}

// Build opens the filesystems cfg refers to. m may be nil.
func Build(ctx context.Context, cfg *config.Config, log logging.Logger, m *metrics.Collector) (*Env, error) {
	env := &Env{
		Registry: fs.NewRegistry(),
		cfg:      cfg,
		log:      log,
		metrics:  m,
	}

	if err := env.registerFilesystems(ctx); err != nil {
		_ = env.Close()
		return nil, err
	}

	if err := env.configure(); err != nil {
		_ = env.Close()
		return nil, err
	}
	return env, nil
}

// ErrRestartRequired is returned by Reload when the storage settings changed.
var ErrRestartRequired = errors.New("storage settings changed, restart required")

// Reload builds an environment for cfg that shares e's filesystems, so an
// open namespace store is not opened twice. e must not be closed afterwards.
func (e *Env) Reload(cfg *config.Config) (*Env, error) {
	if cfg.Namespace != e.cfg.Namespace || cfg.S3 != e.cfg.S3 || !sameSchemes(e.cfg, cfg) {
		return nil, ErrRestartRequired
	}

	next := &Env{
		Registry: e.Registry,
		cfg:      cfg,
		log:      e.log,
		metrics:  e.metrics,
		closers:  e.closers,
	}
	if err := next.configure(); err != nil {
		return nil, err
	}
	return next, nil
}

func (e *Env) configure() error {
	opts := []retry.Option{retry.WithLogger(e.log)}
	if e.metrics != nil {
		opts = append(opts, retry.WithObserver(e.metrics))
	}
	exec, err := retry.New(e.cfg.Retry.Policy(), opts...)
	if err != nil {
		return fmt.Errorf("retry policy: %w", err)
	}
	e.Executor = exec

	e.Action = &dircreate.Context{
		Resolver: e.Registry,
		Preserve: e.cfg.PreserveSet(),
		Log:      e.log,
	}
	if e.metrics != nil {
		e.Action.Observer = e.metrics
	}
	return nil
}

func schemes(cfg *config.Config) (map[string]bool, error) {
	out := map[string]bool{}
	for _, l := range []string{cfg.Source, cfg.Target} {
		loc, err := fs.ParseLocation(l)
		if err != nil {
			return nil, err
		}
		out[loc.Scheme] = true
	}
	return out, nil
}

func sameSchemes(a, b *config.Config) bool {
	sa, errA := schemes(a)
	sb, errB := schemes(b)
	if errA != nil || errB != nil || len(sa) != len(sb) {
		return false
	}
	for k := range sa {
		if !sb[k] {
			return false
		}
	}
	return true
}

func (e *Env) registerFilesystems(ctx context.Context) error {
	e.Registry.Register("file", fs.New())

	used, err := schemes(e.cfg)
	if err != nil {
		return err
	}

	if used["ns"] {
		ns, err := nsfs.Open(nsfs.Options{Dir: e.cfg.Namespace.Dir, InMemory: e.cfg.Namespace.InMemory})
		if err != nil {
			return err
		}
		e.closers = append(e.closers, ns)
		e.Registry.Register("ns", ns)
		e.log.Debug("namespace filesystem opened", "dir", e.cfg.Namespace.Dir, "inMemory", e.cfg.Namespace.InMemory)
	}

	if used["s3"] {
		s := e.cfg.S3
		client, err := s3fs.NewClient(ctx, s3fs.ClientConfig{
			Region:          s.Region,
			Endpoint:        s.Endpoint,
			AccessKeyID:     s.AccessKeyID,
			SecretAccessKey: s.SecretAccessKey,
		})
		if err != nil {
			return err
		}
		bucket, err := s3fs.New(s3fs.Config{Client: client, Bucket: s.Bucket, KeyPrefix: s.KeyPrefix})
		if err != nil {
			return err
		}
		e.Registry.Register("s3://"+s.Bucket, bucket)
		e.log.Debug("s3 filesystem configured", "bucket", s.Bucket, "region", s.Region)
	}
	return nil
}

// ReplicatorOptions describes the replication pass for this environment.
func (e *Env) ReplicatorOptions() replicator.Options {
	opts := replicator.Options{
		Source:   e.cfg.Source,
		Target:   e.cfg.Target,
		Resolver: e.Registry,
		Executor: e.Executor,
		Context:  e.Action,
		Workers:  e.cfg.Workers,
		Log:      e.log,
	}
	if e.metrics != nil {
		opts.Recorder = e.metrics
	}
	return opts
}

// Close releases the filesystems opened by Build.
func (e *Env) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c.Close())
	}
	e.closers = nil
	return errors.Join(errs...)
}
