package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/wikitree/internal/model"
)

// DefaultConcurrency is the default number of jobs run at once.
const DefaultConcurrency = 2

// BatchProcessor runs several crawl jobs concurrently.
// Every job gets a fresh pipeline from the factory, so no crawl state is
// shared between jobs.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each job.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent jobs.
	concurrency int

	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent jobs.
// Values below 1 are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
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

// ProcessBatch runs every job and returns one report per job, in job order.
// A failed job is recorded in its report and does not stop the others.
// The error is non-nil only if ctx was cancelled; jobs that never started
// have a nil report.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, jobs []model.CrawlJob) ([]*model.CrawlReport, error) {
	reports := make([]*model.CrawlReport, len(jobs))
	err := bp.ProcessBatchWithCallback(ctx, jobs, func(report *model.CrawlReport, index int) {
		reports[index] = report
	})
	return reports, err
}

// ProcessBatchWithCallback runs every job and calls callback with each
// finished report and the job's index. The callback is called from the
// goroutine that ran the job, so it must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	jobs []model.CrawlJob,
	callback func(report *model.CrawlReport, index int),
) error {
	bp.logger.Info("starting batch processing",
		"total_jobs", len(jobs),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			report := model.NewCrawlReport(job)
			if err := bp.pipelineFactory().Execute(gctx, report); err != nil {
				bp.logger.Warn("crawl failed",
					"root", job.RootURL,
					"error", err,
				)
			}

			callback(report, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"total_jobs", len(jobs),
		"elapsed", time.Since(startTime),
	)

	return err
}
