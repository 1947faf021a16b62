package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// ProcessorQueue feeds jobs to a fixed set of workers until Shutdown. Used by
// watch mode, where documents keep arriving.
type ProcessorQueue struct {
	runner DocumentRunner
	logger *slog.Logger
	settings

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

func NewProcessorQueue(runner DocumentRunner, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		runner:   runner,
		logger:   logger,
		settings: defaultSettings(),
	}
	for _, o := range opts {
		o(&q.settings)
	}
	q.ch = make(chan Job, q.queueSize)
	q.start()
	return q
}

func (q *ProcessorQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					res := q.runOne(context.Background(), q.runner, job)
					if q.sink != nil {
						q.sink(res)
					}
					if res.OK() {
						q.logger.Info("processed document successfully", "worker_id", workerID, "document", job.Name,
							"queued_ms", time.Since(job.SubmittedAt).Milliseconds())
					} else {
						q.logger.Error("processing failed", "worker_id", workerID, "document", job.Name, "error", res.Error)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

// Enqueue blocks while the queue is full, until ctx is done.
func (q *ProcessorQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "document", job.Name)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued document for processing", "document", job.Name)
		return nil
	default:
	}

	q.logger.Warn("queue full, applying backpressure", "document", job.Name)
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued jobs to drain or ctx to end.
func (q *ProcessorQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
