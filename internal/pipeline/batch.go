package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of files processed at once when
// WithConcurrency is not given.
const DefaultConcurrency = 4

// BatchProcessor runs a fresh pipeline per file with bounded concurrency.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of files processed at once.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor. pipelineFactory is called
// once per file.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs every path and returns the jobs in input order. A
// failing file does not stop the others; its error is in Job.Err. The
// returned error is non-nil only when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, paths []string) ([]*Job, error) {
	jobs := make([]*Job, len(paths))
	err := bp.ProcessBatchWithCallback(ctx, paths, func(job *Job, index int) {
		jobs[index] = job
	})
	return jobs, err
}

// ProcessBatchWithCallback runs every path and calls callback as each job
// finishes, from the goroutine that ran it.
func (bp *BatchProcessor) ProcessBatchWithCallback(ctx context.Context, paths []string, callback func(job *Job, index int)) error {
	bp.logger.Info("starting batch processing",
		"total_files", len(paths),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			job := NewJob(path)
			if err := ctx.Err(); err != nil {
				job.Err = err
				callback(job, i)
				return err
			}

			if err := bp.pipelineFactory().Execute(ctx, job); err != nil {
				bp.logger.Warn("file failed", "file", path, "error", err)
			}
			callback(job, i)
			if errors.Is(job.Err, context.Canceled) || errors.Is(job.Err, context.DeadlineExceeded) {
				return job.Err
			}
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch processing complete",
		"total_files", len(paths),
		"elapsed", time.Since(startTime),
	)
	return err
}
