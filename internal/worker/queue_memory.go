package worker

import (
	"context"
	"time"
)

type memoryQueue struct {
	jobs chan Job
}

func NewMemoryQueue(size int) Queue {
	if size <= 0 {
		size = 256
	}
	return &memoryQueue{jobs: make(chan Job, size)}
}

func (q *memoryQueue) Enqueue(ctx context.Context, job Job) error {
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *memoryQueue) Dequeue(ctx context.Context, timeout time.Duration) (Job, bool, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case job := <-q.jobs:
		return job, true, nil
	case <-timer.C:
		return Job{}, false, nil
	case <-ctx.Done():
		return Job{}, false, ctx.Err()
	}
}
