package worker

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// HandlerFunc processes one job payload. Returning an error triggers a retry
// up to the configured attempt budget.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// Worker consumes the job queue. Jobs run at-least-once; a job that keeps
// failing after maxAttempts is dropped with a logged failure and never blocks
// the request that enqueued it.
type Worker struct {
	queue       Queue
	handlers    map[string]HandlerFunc
	maxAttempts int
	retryDelay  time.Duration
	logger      *zap.Logger
}

func New(queue Queue, maxAttempts int, retryDelay time.Duration, logger *zap.Logger) *Worker {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Worker{
		queue:       queue,
		handlers:    make(map[string]HandlerFunc),
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		logger:      logger,
	}
}

func (w *Worker) Register(kind string, h HandlerFunc) {
	w.handlers[kind] = h
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("worker started")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker stopped")
			return
		default:
		}

		job, ok, err := w.queue.Dequeue(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("worker stopped")
				return
			}
			w.logger.Error("dequeue failed", zap.Error(err))
			time.Sleep(w.retryDelay)
			continue
		}
		if !ok {
			continue
		}
		w.process(ctx, job)
	}
}

func (w *Worker) process(ctx context.Context, job Job) {
	handler, ok := w.handlers[job.Kind]
	if !ok {
		w.logger.Warn("no handler for job", zap.String("kind", job.Kind))
		return
	}

	var err error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		if err = handler(ctx, job.Payload); err == nil {
			w.logger.Info("job done",
				zap.String("kind", job.Kind),
				zap.Int("attempt", attempt))
			return
		}
		w.logger.Warn("job attempt failed",
			zap.String("kind", job.Kind),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt < w.maxAttempts {
			select {
			case <-time.After(w.retryDelay):
			case <-ctx.Done():
				return
			}
		}
	}
	w.logger.Error("job dropped after max attempts",
		zap.String("kind", job.Kind),
		zap.Error(err))
}
