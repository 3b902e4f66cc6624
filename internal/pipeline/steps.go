package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/focusfeed/internal/annotate"
	"github.com/nao1215/focusfeed/internal/config"
	"github.com/nao1215/focusfeed/internal/dom"
	"github.com/nao1215/focusfeed/internal/metrics"
	"github.com/nao1215/focusfeed/internal/scan"
	"github.com/nao1215/focusfeed/internal/state"
)

// ErrNoDocument is returned by steps that need a loaded document.
var ErrNoDocument = errors.New("no document loaded")

// LoadStep parses the job's file.
type LoadStep struct{}

// Name implements Step.
func (LoadStep) Name() string { return "load" }

// Do implements Step.
func (LoadStep) Do(_ context.Context, job *Job) error {
	f, err := os.Open(job.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", job.Path, err)
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", job.Path, err)
	}
	job.Doc = doc
	return nil
}

// ClassifyStep runs one scan pass over the loaded document.
type ClassifyStep struct {
	Selectors config.Selectors
	Snapshot  state.Snapshot
	BadgeText string
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// Name implements Step.
func (s *ClassifyStep) Name() string { return "classify" }

// Do implements Step.
func (s *ClassifyStep) Do(_ context.Context, job *Job) error {
	if job.Doc == nil {
		return ErrNoDocument
	}

	annotator := annotate.New(
		annotate.WithThumbnailSelectors(s.Selectors.Thumbnails),
		annotate.WithBadgeText(s.BadgeText),
	)
	opts := []scan.Option{
		scan.WithAnnotator(annotator),
		scan.WithSource(job.Path),
		scan.WithMetrics(s.Metrics),
	}
	if s.Logger != nil {
		opts = append(opts, scan.WithLogger(s.Logger))
	}

	co, err := scan.New(job.Doc, s.Selectors.Items, s.Selectors.Titles, opts...)
	if err != nil {
		return err
	}
	job.Result = co.ScanSnapshot(s.Snapshot)
	return nil
}

// WriteStep renders the annotated document into Dir under the input's base
// name. An empty Dir makes the step a no-op.
type WriteStep struct {
	Dir string
}

// Name implements Step.
func (s *WriteStep) Name() string { return "write" }

// Do implements Step.
func (s *WriteStep) Do(_ context.Context, job *Job) error {
	if s.Dir == "" {
		return nil
	}
	if job.Doc == nil {
		return ErrNoDocument
	}
	if err := os.MkdirAll(s.Dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	out := filepath.Join(s.Dir, filepath.Base(job.Path))
	if sameFile(out, job.Path) {
		return fmt.Errorf("refusing to overwrite input %s", job.Path)
	}
	f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	if err := job.Doc.Render(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", out, err)
	}
	job.OutputPath = out
	return nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// FileOptions configures NewFilePipeline.
type FileOptions struct {
	Selectors config.Selectors
	Snapshot  state.Snapshot
	BadgeText string
	OutputDir string
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// NewFilePipeline builds the load, classify and write pipeline used by the
// scan command.
func NewFilePipeline(opts FileOptions) *Pipeline {
	p := New(WithLogger(opts.Logger))
	p.AddSteps(
		LoadStep{},
		&ClassifyStep{
			Selectors: opts.Selectors,
			Snapshot:  opts.Snapshot,
			BadgeText: opts.BadgeText,
			Metrics:   opts.Metrics,
			Logger:    opts.Logger,
		},
		&WriteStep{Dir: opts.OutputDir},
	)
	return p
}
