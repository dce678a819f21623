package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/webwaiter/internal/model"
)

// DefaultBatchConcurrency is the number of targets inspected at once.
const DefaultBatchConcurrency = 4

// BatchProcessor inspects many targets concurrently. Each target gets a
// pipeline from the factory, so per-target clients and site settings never
// leak between inspections.
type BatchProcessor struct {
	pipelineFactory func(target string) *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets how many targets are inspected at once.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor.
func NewBatchProcessor(pipelineFactory func(target string) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch inspects every target and returns the reports in input
// order. A failed inspection still yields its report; only cancellation is
// returned as an error, in which case unstarted targets have nil reports.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.Report, error) {
	reports := make([]*model.Report, len(targets))
	err := bp.ProcessBatchWithCallback(ctx, targets, func(report *model.Report, index int) {
		reports[index] = report
	})
	return reports, err
}

// ProcessBatchWithCallback inspects every target and calls callback as each
// report completes. The callback runs on the inspecting goroutine.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(report *model.Report, index int),
) error {
	bp.logger.Info("starting batch inspection",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			bp.logger.Info("inspecting target",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			report, err := bp.pipelineFactory(target).BuildReport(ctx, target)
			if err != nil {
				bp.logger.Warn("inspection failed", "target", target, "error", err)
			} else {
				bp.logger.Info("inspection completed", "target", target)
			}

			callback(report, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch inspection complete",
		"total_targets", len(targets),
		"elapsed", time.Since(start),
	)
	return err
}
