package worker

import "context"

// provides a simple in-memory job queue used by the worker pool.

type Queue struct {
	Ch chan Job
}

func NewQueue(size int) *Queue {
	return &Queue{Ch: make(chan Job, size)}
}

// Push blocks until the job is queued or ctx is done.
func (q *Queue) Push(ctx context.Context, j Job) bool {
	select {
	case q.Ch <- j:
		return true
	case <-ctx.Done():
		return false
	}
}

// Pop returns false once the queue is closed and drained, or ctx is done.
func (q *Queue) Pop(ctx context.Context) (Job, bool) {
	select {
	case j, ok := <-q.Ch:
		return j, ok
	case <-ctx.Done():
		return Job{}, false
	}
}

// Close tells consumers no more jobs will be pushed.
func (q *Queue) Close() {
	close(q.Ch)
}
