package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/wikitree/internal/crawler"
	"github.com/nao1215/wikitree/internal/images"
	"github.com/nao1215/wikitree/internal/model"
)

// BuildTreeStep builds the relationship tree, the first phase of a job.
// It stores the tree, the rejection count and the collected image tasks in
// the report. A failure here is fatal for the job.
type BuildTreeStep struct {
	builder *crawler.Builder
	logger  *slog.Logger
}

// NewBuildTreeStep creates a tree-building step.
func NewBuildTreeStep(builder *crawler.Builder, logger *slog.Logger) *BuildTreeStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &BuildTreeStep{builder: builder, logger: logger}
}

// Name returns the step name.
func (s *BuildTreeStep) Name() string {
	return "build_tree"
}

// Do executes the step.
func (s *BuildTreeStep) Do(ctx context.Context, report *model.CrawlReport) error {
	root, cctx, err := s.builder.Build(ctx, report.Job)
	if cctx != nil {
		report.Rejected = cctx.Rejected()
	}
	if err != nil {
		return fmt.Errorf("failed to build tree for %s: %w", report.Job.RootURL, err)
	}

	report.Root = root
	report.ImageTasks = cctx.ImageTasks()

	s.logger.Info("tree built",
		"root", report.Job.RootURL,
		"nodes", model.CountNodes(root),
		"depth", model.Depth(root),
		"rejected", report.Rejected,
	)
	return nil
}

// FetchImagesStep downloads the portraits of a built tree, the second phase
// of a job. Individual failures are recorded in report.Images.
type FetchImagesStep struct {
	fetcher *images.Fetcher
	logger  *slog.Logger
}

// NewFetchImagesStep creates an image download step.
func NewFetchImagesStep(fetcher *images.Fetcher, logger *slog.Logger) *FetchImagesStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &FetchImagesStep{fetcher: fetcher, logger: logger}
}

// Name returns the step name.
func (s *FetchImagesStep) Name() string {
	return "fetch_images"
}

// Do executes the step. Without a tree it does nothing.
func (s *FetchImagesStep) Do(ctx context.Context, report *model.CrawlReport) error {
	if report.Root == nil {
		s.logger.Debug("skipping image download, no tree")
		return nil
	}

	tasks := report.ImageTasks
	if len(tasks) == 0 {
		tasks = model.ImageTasks(report.Root)
	}

	report.Images = s.fetcher.FetchAll(ctx, tasks)

	failed := len(report.FailedImages())
	if failed > 0 {
		s.logger.Warn("some images could not be downloaded",
			"root", report.Job.RootURL,
			"failed", failed,
			"total", len(report.Images),
		)
	}
	return nil
}

// SerializeStep flattens the tree into level-order sequences.
type SerializeStep struct{}

// NewSerializeStep creates a serialization step.
func NewSerializeStep() *SerializeStep {
	return &SerializeStep{}
}

// Name returns the step name.
func (s *SerializeStep) Name() string {
	return "serialize"
}

// Do executes the step.
func (s *SerializeStep) Do(_ context.Context, report *model.CrawlReport) error {
	report.Sequences = model.Serialize(report.Root)
	return nil
}

// ReportSaver persists a finished report. *database.CrawlDB implements it.
type ReportSaver interface {
	SaveCrawlReport(ctx context.Context, report *model.CrawlReport) error
}

// ExportStep stores the report through a ReportSaver.
// Export failures are logged and do not fail the job.
type ExportStep struct {
	saver  ReportSaver
	logger *slog.Logger
}

// NewExportStep creates an export step.
func NewExportStep(saver ReportSaver, logger *slog.Logger) *ExportStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportStep{saver: saver, logger: logger}
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return "export"
}

// Do executes the step. The duration is set here because the export
// happens before Execute returns.
func (s *ExportStep) Do(ctx context.Context, report *model.CrawlReport) error {
	if report.Root == nil {
		return nil
	}
	report.Duration = time.Since(report.StartedAt)
	if err := s.saver.SaveCrawlReport(ctx, report); err != nil {
		s.logger.Warn("failed to export crawl report",
			"root", report.Job.RootURL,
			"error", err,
		)
	}
	return nil
}
