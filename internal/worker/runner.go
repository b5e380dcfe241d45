package worker

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// contains the loops that pull jobs from the queue and execute them.

// RunLoop handles jobs until the queue is drained or ctx is done.
func RunLoop(ctx context.Context, w *Worker, q *Queue, report func(Result)) {
	for {
		job, ok := q.Pop(ctx)
		if !ok {
			return
		}

		res := w.Handle(ctx, job)
		if res.Err != nil {
			w.log.Error("worker: directory failed", "target", job.Target, "error", res.Err)
		}
		if report != nil {
			report(res)
		}
	}
}

// RunPool runs n RunLoops and waits for them. report may be called concurrently.
func RunPool(ctx context.Context, n int, w *Worker, q *Queue, report func(Result)) error {
	if n < 1 {
		n = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			RunLoop(gctx, w, q, report)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
