// Package dircreate creates target directories and carries the source
// directory's erasure-coding policy over when configured to.
package dircreate

import (
	"context"
	"errors"
	"fmt"

	"github.com/raoulx24/dirsync/internal/ec"
	"github.com/raoulx24/dirsync/internal/fs"
	"github.com/raoulx24/dirsync/internal/logging"
	"github.com/raoulx24/dirsync/internal/preserve"
	"github.com/raoulx24/dirsync/internal/retry"
)

// ErrInvalidArguments reports an incomplete argument set. It is never retried.
var ErrInvalidArguments = errors.New("invalid directory create arguments")

// Decision records what happened to the erasure-coding policy of one directory.
type Decision string

const (
	DecisionApplied       Decision = "applied"
	DecisionUnknownPolicy Decision = "unknown-policy"
	DecisionSkipped       Decision = "skipped"
)

// Observer is told about every erasure-coding decision.
type Observer interface {
	ObserveErasureCoding(target string, d Decision)
}

// Context carries what an action needs beyond its own arguments: how to
// reach the target filesystem and which attributes to preserve.
type Context struct {
	Resolver fs.Resolver
	Preserve preserve.Set
	Registry ec.Registry // nil = ec.System()
	Log      logging.Logger
	Observer Observer
}

// Args binds one directory create.
type Args struct {
	Target   string // target location
	Context  *Context
	Source   *fs.FileInfo
	SourceFS fs.FS
}

func (a Args) validate() error {
	switch {
	case a.Target == "":
		return fmt.Errorf("%w: empty target", ErrInvalidArguments)
	case a.Context == nil:
		return fmt.Errorf("%w: nil context", ErrInvalidArguments)
	case a.Context.Resolver == nil:
		return fmt.Errorf("%w: nil resolver", ErrInvalidArguments)
	case a.Source == nil:
		return fmt.Errorf("%w: nil source status", ErrInvalidArguments)
	case a.SourceFS == nil:
		return fmt.Errorf("%w: nil source filesystem", ErrInvalidArguments)
	}
	return nil
}

// Action is the retry.Action that creates one directory.
type Action struct {
	args Args
	desc string
}

var _ retry.Action[bool] = (*Action)(nil)

// New validates args and binds them to an action.
func New(args Args) (*Action, error) {
	if err := args.validate(); err != nil {
		return nil, retry.Permanent(err)
	}
	return &Action{args: args, desc: "mkdir " + args.Target}, nil
}

func (a *Action) Description() string { return a.desc }

// Execute creates the target directory, then copies the erasure-coding
// policy when every condition for it holds. The result is false only when
// the directory could not be created; the policy step never changes it.
func (a *Action) Execute(ctx context.Context) (bool, error) {
	c := a.args.Context
	log := c.Log
	if log == nil {
		log = logging.Discard()
	}

	targetFS, loc, err := c.Resolver.Resolve(a.args.Target)
	if err != nil {
		return false, retry.Permanent(err)
	}

	ok, err := targetFS.Mkdirs(ctx, loc.Path)
	if err != nil {
		return false, err
	}
	if !ok {
		log.Warn("target directory could not be created", "target", a.args.Target)
		return false, nil
	}

	src := a.args.Source
	if !c.Preserve.Has(preserve.ErasureCodingPolicy) || !src.ErasureCoded {
		return true, nil
	}

	srcEC, ok := fs.ErasureCodingOf(a.args.SourceFS, src.Path)
	if !ok {
		a.decide(log, DecisionSkipped, "source filesystem does not support erasure coding")
		return true, nil
	}
	dstEC, ok := fs.ErasureCodingOf(targetFS, loc.Path)
	if !ok {
		a.decide(log, DecisionSkipped, "target filesystem does not support erasure coding")
		return true, nil
	}

	name, err := srcEC.ErasureCodingPolicyName(ctx, *src)
	if err != nil {
		return false, fmt.Errorf("reading erasure coding policy of %s: %w", src.Path, err)
	}

	registry := c.Registry
	if registry == nil {
		registry = ec.System()
	}

	policy, found := registry.Lookup(name)
	log.Debug("erasure coding policy for source path", "source", src.Path, "name", name, "found", found)
	if !found {
		a.decide(log, DecisionUnknownPolicy, "unknown policy "+name)
		return true, nil
	}

	if err := dstEC.SetErasureCodingPolicy(ctx, loc.Path, policy.Name); err != nil {
		return false, fmt.Errorf("setting erasure coding policy %s on %s: %w", policy.Name, a.args.Target, err)
	}
	a.decide(log, DecisionApplied, policy.Name)
	return true, nil
}

func (a *Action) decide(log logging.Logger, d Decision, detail string) {
	log.Debug("erasure coding decision", "target", a.args.Target, "decision", d, "detail", detail)
	if o := a.args.Context.Observer; o != nil {
		o.ObserveErasureCoding(a.args.Target, d)
	}
}

// Create runs a directory create through e and returns whether the
// directory exists afterwards.
func Create(ctx context.Context, e *retry.Executor, args Args) (bool, error) {
	a, err := New(args)
	if err != nil {
		return false, err
	}
	return retry.Execute[bool](ctx, e, a)
}
