// Package nsfs is a namespace filesystem stored in BadgerDB. It keeps
// directories, file markers and per-directory erasure-coding policies, with
// policies inherited from the nearest ancestor that sets one.
package nsfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/raoulx24/dirsync/internal/ec"
	"github.com/raoulx24/dirsync/internal/fs"
)

// ErrUnknownPolicy is returned when setting a policy the registry does not know.
var ErrUnknownPolicy = errors.New("unknown erasure coding policy")

type Options struct {
	// Dir is the BadgerDB directory. Ignored when InMemory is set.
	Dir      string
	InMemory bool

	// Registry validates policies passed to SetErasureCodingPolicy. nil = ec.System().
	Registry ec.Registry
}

// FS implements fs.FS and fs.ErasureCoding.
type FS struct {
	db       *badger.DB
	registry ec.Registry
	now      func() time.Time
}

var (
	_ fs.FS            = (*FS)(nil)
	_ fs.ErasureCoding = (*FS)(nil)
)

type entry struct {
	Dir      bool      `json:"dir"`
	ECPolicy string    `json:"ec_policy,omitempty"`
	ModTime  time.Time `json:"mtime"`
}

func Open(opts Options) (*FS, error) {
	var bo badger.Options
	if opts.InMemory {
		bo = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Dir == "" {
			return nil, fmt.Errorf("nsfs: dir is required unless in-memory")
		}
		bo = badger.DefaultOptions(opts.Dir)
	}
	bo = bo.WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("nsfs: opening badger at %q: %w", opts.Dir, err)
	}

	reg := opts.Registry
	if reg == nil {
		reg = ec.System()
	}
	return &FS{db: db, registry: reg, now: time.Now}, nil
}

func (f *FS) Close() error {
	return f.db.Close()
}

func clean(p string) string {
	return path.Clean("/" + p)
}

// key places an entry under its parent so that a parent's children share a prefix.
func key(p string) []byte {
	if p == "/" {
		return []byte("root")
	}
	return []byte("e:" + path.Dir(p) + "\x00" + path.Base(p))
}

func childPrefix(p string) []byte {
	return []byte("e:" + p + "\x00")
}

func get(txn *badger.Txn, p string) (entry, bool, error) {
	item, err := txn.Get(key(p))
	if errors.Is(err, badger.ErrKeyNotFound) {
		if p == "/" {
			return entry{Dir: true}, true, nil
		}
		return entry{}, false, nil
	}
	if err != nil {
		return entry{}, false, err
	}

	var e entry
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &e)
	})
	return e, err == nil, err
}

func put(txn *badger.Txn, p string, e entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return txn.Set(key(p), b)
}

// ancestry returns p and each of its parents, root first.
func ancestry(p string) []string {
	if p == "/" {
		return []string{"/"}
	}
	parts := strings.Split(strings.TrimPrefix(p, "/"), "/")
	out := make([]string, 0, len(parts)+1)
	out = append(out, "/")
	cur := ""
	for _, part := range parts {
		cur += "/" + part
		out = append(out, cur)
	}
	return out
}

// effectivePolicy returns the policy set on p or its nearest ancestor.
func effectivePolicy(txn *badger.Txn, p string) (string, error) {
	chain := ancestry(p)
	for i := len(chain) - 1; i >= 0; i-- {
		e, ok, err := get(txn, chain[i])
		if err != nil {
			return "", err
		}
		if ok && e.ECPolicy != "" {
			return e.ECPolicy, nil
		}
	}
	return "", nil
}

func erasureCoded(policy string) bool {
	return policy != "" && policy != ec.ReplicationPolicyName
}

func (f *FS) Stat(ctx context.Context, p string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return fs.FileInfo{}, err
	}
	p = clean(p)

	var info fs.FileInfo
	err := f.db.View(func(txn *badger.Txn) error {
		e, ok, err := get(txn, p)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("stat %s: %w", p, fs.ErrNotExist)
		}

		policy, err := effectivePolicy(txn, p)
		if err != nil {
			return err
		}
		info = fs.FileInfo{
			Path:         p,
			IsDir:        e.Dir,
			ModTime:      e.ModTime,
			ErasureCoded: erasureCoded(policy),
		}
		return nil
	})
	return info, err
}

func (f *FS) Mkdirs(ctx context.Context, p string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p = clean(p)

	created := true
	err := f.db.Update(func(txn *badger.Txn) error {
		now := f.now()
		for _, dir := range ancestry(p) {
			e, ok, err := get(txn, dir)
			if err != nil {
				return err
			}
			if !ok {
				if err := put(txn, dir, entry{Dir: true, ModTime: now}); err != nil {
					return err
				}
				continue
			}
			if !e.Dir {
				created = false
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (f *FS) ListDir(ctx context.Context, p string) ([]fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p = clean(p)

	var out []fs.FileInfo
	err := f.db.View(func(txn *badger.Txn) error {
		e, ok, err := get(txn, p)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("list %s: %w", p, fs.ErrNotExist)
		}
		if !e.Dir {
			return fmt.Errorf("list %s: %w", p, fs.ErrNotDirectory)
		}

		parentPolicy, err := effectivePolicy(txn, p)
		if err != nil {
			return err
		}

		prefix := childPrefix(p)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			name := string(item.Key()[len(prefix):])

			var child entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &child)
			}); err != nil {
				return err
			}

			policy := child.ECPolicy
			if policy == "" {
				policy = parentPolicy
			}
			out = append(out, fs.FileInfo{
				Path:         path.Join(p, name),
				IsDir:        child.Dir,
				ModTime:      child.ModTime,
				ErasureCoded: erasureCoded(policy),
			})
		}
		return nil
	})
	return out, err
}

// CreateFile records a file at p, creating missing parent directories.
func (f *FS) CreateFile(ctx context.Context, p string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p = clean(p)
	if p == "/" {
		return fmt.Errorf("create %s: %w", p, fs.ErrNotDirectory)
	}

	ok, err := f.Mkdirs(ctx, path.Dir(p))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("create %s: %w", p, fs.ErrNotDirectory)
	}

	return f.db.Update(func(txn *badger.Txn) error {
		e, ok, err := get(txn, p)
		if err != nil {
			return err
		}
		if ok && e.Dir {
			return fmt.Errorf("create %s: is a directory", p)
		}
		return put(txn, p, entry{ModTime: f.now()})
	})
}

// ErasureCodingPolicyName returns the effective policy of info.Path, or ""
// when the path is replicated.
func (f *FS) ErasureCodingPolicyName(ctx context.Context, info fs.FileInfo) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := clean(info.Path)

	var name string
	err := f.db.View(func(txn *badger.Txn) error {
		_, ok, err := get(txn, p)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("ec policy %s: %w", p, fs.ErrNotExist)
		}
		policy, err := effectivePolicy(txn, p)
		if err != nil {
			return err
		}
		if erasureCoded(policy) {
			name = policy
		}
		return nil
	})
	return name, err
}

// SetErasureCodingPolicy sets policy on the directory p. The replication
// pseudo policy stops p from inheriting an ancestor's policy.
func (f *FS) SetErasureCodingPolicy(ctx context.Context, p, policy string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p = clean(p)

	if policy != ec.ReplicationPolicyName {
		if _, ok := f.registry.Lookup(policy); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
		}
	}

	return f.db.Update(func(txn *badger.Txn) error {
		e, ok, err := get(txn, p)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("set ec policy %s: %w", p, fs.ErrNotExist)
		}
		if !e.Dir {
			return fmt.Errorf("set ec policy %s: %w", p, fs.ErrNotDirectory)
		}
		e.ECPolicy = policy
		return put(txn, p, e)
	})
}
