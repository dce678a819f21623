package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nao1215/webwaiter/internal/dom"
	"github.com/nao1215/webwaiter/internal/inspect"
	"github.com/nao1215/webwaiter/internal/model"
)

// ErrNoDocument is returned when a step needs a document that was never
// loaded. It is the only error that stops a pipeline running with
// continue-on-error.
var ErrNoDocument = errors.New("no document loaded")

// Loader is a document provider: the static HTTP loader or the headless
// browser.
type Loader interface {
	// Load fetches target and returns its document.
	Load(ctx context.Context, target string) (dom.Document, error)

	// Name identifies the provider in reports.
	Name() string
}

// Inspection is the state of one inspection of one target. A fresh
// Inspection is created for every target and never shared.
type Inspection struct {
	// Target is the page address as given by the user.
	Target string

	// Document is set by the load step.
	Document dom.Document

	// Links are the candidate URLs gathered by the extract step.
	Links inspect.Links

	// Report accumulates the results.
	Report *model.Report
}

// NewInspection creates an Inspection with an empty report.
func NewInspection(target string) *Inspection {
	return &Inspection{
		Target: target,
		Report: model.NewReport(target),
	}
}

// Step is one stage of an inspection.
// Steps run in sequence and share one Inspection: the load step sets the
// document, the extract step fills Links and the report fields that need no
// network, and later steps resolve and enrich what was gathered.
//
// Design decision: a step owns its timeouts. Execute only checks the
// context between steps, so a step that fans out (ResolveStep) must wait for
// its own goroutines before returning and must leave the report consistent
// when the context is cancelled part way through.
type Step interface {
	// Do runs the step. Failures that only affect part of the report
	// should be logged and swallowed; returned errors are recorded in the
	// report.
	Do(ctx context.Context, in *Inspection) error

	// Name returns the step name used in logs and Report.PerformedSteps.
	Name() string
}

// Pipeline runs steps in order against one Inspection.
//
// A Pipeline holds no per-target state and can be reused, but the batch
// processor builds one per target so that per-site options (cookies,
// headers, browser) apply to that target only.
//
// Design decision: inspections run with continue-on-error. A failing
// extraction step is logged and recorded in Report.Errors, and the report is
// still produced. ErrNoDocument is the exception: without a document no
// later step can run, so the pipeline stops there.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps running later steps after a step fails.
// ErrNoDocument still stops the pipeline.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline that stops on the first error.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against in. Cancellation is checked between
// steps and marks the report as timed out. Step errors are recorded in the
// report prefixed with the step name.
func (p *Pipeline) Execute(ctx context.Context, in *Inspection) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"target", in.Target,
				"reason", ctx.Err(),
			)
			in.Report.TimedOut = true
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"target", in.Target,
		)

		err := step.Do(ctx, in)
		in.Report.PerformedSteps = append(in.Report.PerformedSteps, step.Name())
		if err == nil {
			p.logger.Debug("step completed",
				"step", step.Name(),
				"target", in.Target,
			)
			continue
		}

		p.logger.Error("step failed",
			"step", step.Name(),
			"target", in.Target,
			"error", err,
		)
		in.Report.AddError(fmt.Errorf("%s: %w", step.Name(), err))

		if !p.continueOnError || errors.Is(err, ErrNoDocument) {
			return err
		}
	}
	return nil
}

// BuildReport inspects target with a fresh Inspection and returns its
// report. The report is returned even when err is not nil.
func (p *Pipeline) BuildReport(ctx context.Context, target string) (*model.Report, error) {
	in := NewInspection(target)
	err := p.Execute(ctx, in)
	return in.Report, err
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
