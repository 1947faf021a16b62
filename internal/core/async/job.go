package async

import (
	"context"
	"time"

	"github.com/joseph-ayodele/sugar-reports/constants"
	"github.com/joseph-ayodele/sugar-reports/internal/entity"
)

// Loader fetches a document's bytes when a worker picks the job up, so a
// queued job holds no file content.
type Loader func(ctx context.Context) (entity.Document, error)

// Job is one document waiting to be processed.
type Job struct {
	Name        string
	Load        Loader
	SubmittedAt time.Time
}

// DocumentRunner processes one loaded document. *core.Processor satisfies it.
type DocumentRunner interface {
	Run(ctx context.Context, doc entity.Document) entity.DocumentResult
}

// Sink receives every finished result. It is called from worker goroutines.
type Sink func(entity.DocumentResult)

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

type settings struct {
	workers   int
	queueSize int
	timeout   time.Duration
	sink      Sink
}

func defaultSettings() settings {
	return settings{
		workers:   4,
		queueSize: 256,
		timeout:   3 * time.Minute,
	}
}

type Option func(*settings)

func WithWorkers(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithProcessTimeout bounds the load + process time of each document.
func WithProcessTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithSink(fn Sink) Option {
	return func(s *settings) { s.sink = fn }
}

// runOne loads and processes a job under the per-document timeout. Load
// errors and cancellation become FAILED results rather than errors.
func (s settings) runOne(ctx context.Context, runner DocumentRunner, job Job) entity.DocumentResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	failed := func(err error) entity.DocumentResult {
		return entity.DocumentResult{
			Document: job.Name,
			Status:   constants.DocumentStatusFailed,
			Error:    err.Error(),
			Duration: time.Since(start),
		}
	}

	if err := ctx.Err(); err != nil {
		return failed(err)
	}
	doc, err := job.Load(ctx)
	if err != nil {
		return failed(err)
	}
	if doc.Name == "" {
		doc.Name = job.Name
	}
	res := runner.Run(ctx, doc)
	if res.Status != constants.DocumentStatusOK && ctx.Err() != nil {
		res.Status = constants.DocumentStatusFailed
		res.Error = ctx.Err().Error() + ": " + res.Error
	}
	return res
}
