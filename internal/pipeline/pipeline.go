package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/focusfeed/internal/dom"
	"github.com/nao1215/focusfeed/internal/model"
)

// Job carries one file through a pipeline.
type Job struct {
	// Path is the input file.
	Path string

	// Doc is the parsed document, set by LoadStep.
	Doc *dom.Document

	// Result is the scan outcome, set by ClassifyStep.
	Result *model.ScanResult

	// OutputPath is where WriteStep stored the annotated document.
	OutputPath string

	// Err is the first step error.
	Err error

	// Steps lists the steps that completed.
	Steps []string
}

// NewJob creates a job for path.
func NewJob(path string) *Job {
	return &Job{Path: path, Steps: make([]string, 0)}
}

// Step is one stage of a pipeline.
type Step interface {
	// Do runs the step. Returning an error stops the pipeline unless it was
	// built with WithContinueOnError.
	Do(ctx context.Context, job *Job) error

	// Name is used in logs and Job.Steps.
	Name() string
}

// Pipeline runs steps in order.
type Pipeline struct {
	steps           []Step
	logger          *slog.Logger
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps running later steps after a failure.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
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

// AddSteps appends multiple steps.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step against job. Cancellation is checked between
// steps. The first failure is stored in job.Err.
func (p *Pipeline) Execute(ctx context.Context, job *Job) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "file", job.Path, "reason", err)
			if job.Err == nil {
				job.Err = err
			}
			return err
		}

		p.logger.Debug("executing step", "step", step.Name(), "file", job.Path)
		if err := step.Do(ctx, job); err != nil {
			p.logger.Error("step failed", "step", step.Name(), "file", job.Path, "error", err)
			if job.Err == nil {
				job.Err = err
			}
			if !p.continueOnError {
				return err
			}
			continue
		}
		job.Steps = append(job.Steps, step.Name())
	}
	return nil
}

// StepCount returns the number of steps.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
