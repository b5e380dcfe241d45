package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/dirsync/internal/dircreate"
	"github.com/raoulx24/dirsync/internal/fs"
	"github.com/raoulx24/dirsync/internal/fs/nsfs"
	"github.com/raoulx24/dirsync/internal/logging"
	"github.com/raoulx24/dirsync/internal/preserve"
	"github.com/raoulx24/dirsync/internal/retry"
)

func openNS(t *testing.T) *nsfs.FS {
	t.Helper()
	f, err := nsfs.Open(nsfs.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func newWorker(t *testing.T, src, dst fs.FS) *Worker {
	t.Helper()
	reg := fs.NewRegistry()
	reg.Register("ns", dst)

	exec, err := retry.New(retry.Policy{MaxAttempts: 5, Backoff: retry.Constant(time.Millisecond)})
	require.NoError(t, err)

	tctx := &dircreate.Context{
		Resolver: reg,
		Preserve: preserve.NewSet(preserve.ErasureCodingPolicy),
		Log:      logging.Discard(),
	}
	return New(exec, tctx, src, logging.Discard())
}

func TestHandleCreatesAndPropagates(t *testing.T) {
	ctx := context.Background()
	src, dst := openNS(t), openNS(t)

	_, err := src.Mkdirs(ctx, "/src/data")
	require.NoError(t, err)
	require.NoError(t, src.SetErasureCodingPolicy(ctx, "/src/data", "RS-6-3-1024k"))
	info, err := src.Stat(ctx, "/src/data")
	require.NoError(t, err)

	w := newWorker(t, src, dst)
	res := w.Handle(ctx, Job{Source: info, Target: "ns:///dst/data"})

	require.NoError(t, res.Err)
	assert.True(t, res.Created)

	got, err := dst.Stat(ctx, "/dst/data")
	require.NoError(t, err)
	assert.True(t, got.ErasureCoded)
	name, err := dst.ErasureCodingPolicyName(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "RS-6-3-1024k", name)
}

func TestHandleNotCreated(t *testing.T) {
	ctx := context.Background()
	src, dst := openNS(t), openNS(t)
	require.NoError(t, dst.CreateFile(ctx, "/dst/data"))

	w := newWorker(t, src, dst)
	res := w.Handle(ctx, Job{Source: fs.FileInfo{Path: "/src/data", IsDir: true}, Target: "ns:///dst/data"})

	assert.False(t, res.Created)
	require.ErrorIs(t, res.Err, ErrNotCreated)
}

func TestHandleUnknownScheme(t *testing.T) {
	ctx := context.Background()
	src, dst := openNS(t), openNS(t)

	res := newWorker(t, src, dst).Handle(ctx, Job{Source: fs.FileInfo{Path: "/src"}, Target: "hdfs://nn/dst"})
	require.ErrorIs(t, res.Err, fs.ErrUnknownScheme)
}

func TestRunPool(t *testing.T) {
	ctx := context.Background()
	src, dst := openNS(t), openNS(t)
	w := newWorker(t, src, dst)

	targets := []string{"ns:///a", "ns:///a/b", "ns:///c", "ns:///c/d/e"}
	q := NewQueue(len(targets))
	for _, tgt := range targets {
		require.True(t, q.Push(ctx, Job{Source: fs.FileInfo{Path: "/x", IsDir: true}, Target: tgt}))
	}
	q.Close()

	var (
		mu      sync.Mutex
		results []Result
	)
	err := RunPool(ctx, 3, w, q, func(r Result) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
	})
	require.NoError(t, err)
	require.Len(t, results, len(targets))

	for _, r := range results {
		assert.True(t, r.Created, r.Job.Target)
	}
	for _, p := range []string{"/a/b", "/c/d/e"} {
		info, err := dst.Stat(ctx, p)
		require.NoError(t, err)
		assert.True(t, info.IsDir)
	}
}

func TestQueueCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	q := NewQueue(0)
	assert.False(t, q.Push(ctx, Job{}))
	_, ok := q.Pop(ctx)
	assert.False(t, ok)
}
