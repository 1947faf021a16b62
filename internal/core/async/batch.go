package async

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/sugar-reports/internal/entity"
)

// Batch processes a fixed set of jobs on a bounded pool. One document's
// failure never stops the others.
type Batch struct {
	runner DocumentRunner
	logger *slog.Logger
	settings
}

func NewBatch(runner DocumentRunner, logger *slog.Logger, opts ...Option) *Batch {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Batch{runner: runner, logger: logger, settings: defaultSettings()}
	for _, o := range opts {
		o(&b.settings)
	}
	return b
}

// Run returns one result per job, in job order. The error is non-nil only when
// ctx was cancelled; results for jobs that never ran are FAILED.
func (b *Batch) Run(ctx context.Context, jobs []Job) ([]entity.DocumentResult, error) {
	results := make([]entity.DocumentResult, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, job := range jobs {
		g.Go(func() error {
			res := b.runOne(gctx, b.runner, job)
			results[i] = res
			if b.sink != nil {
				b.sink(res)
			}
			if res.OK() {
				b.logger.Debug("document processed", "document", res.Document, "duration_ms", res.Duration.Milliseconds())
			} else {
				b.logger.Warn("document failed", "document", res.Document, "status", res.Status, "error", res.Error)
			}
			return nil
		})
	}
	_ = g.Wait()

	b.logger.Info("batch complete", "documents", len(jobs), "failed", countFailed(results))
	return results, ctx.Err()
}

func countFailed(results []entity.DocumentResult) int {
	n := 0
	for _, r := range results {
		if !r.OK() {
			n++
		}
	}
	return n
}
