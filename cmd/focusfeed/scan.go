package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/focusfeed/internal/config"
	"github.com/nao1215/focusfeed/internal/model"
	"github.com/nao1215/focusfeed/internal/pipeline"
	"github.com/nao1215/focusfeed/internal/state"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <file>...",
		Short: "Classify and annotate saved feed pages",
		Long: `Scan runs one classification pass over each saved HTML page and reports
which entries are on and off goal.

By default the goal and toggle are read from the settings store; --goal
overrides both for this run. With --output-dir an annotated copy of each
page is written there; the inputs are never modified.

Examples:
  # Scan with the stored goal
  focusfeed scan home.html

  # Scan several pages with an explicit goal and keep annotated copies
  focusfeed scan -g "learn rust" -d annotated/ home.html subscriptions.html

  # Markdown report to a file
  focusfeed scan --markdown -o report.md home.html`,
		Args: cobra.MinimumNArgs(1),
		RunE: runScanCmd,
	}

	cmd.Flags().StringP("goal", "g", "",
		"Goal to scan with (default: the stored goal)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of files scanned concurrently")
	cmd.Flags().StringP("output-dir", "d", "",
		"Write annotated copies of the pages to this directory")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyScanFlags(cmd, cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	snap, err := scanSnapshot(ctx, cmd, cfg, logger)
	if err != nil {
		return err
	}
	return runScan(ctx, cmd, cfg, snap, args, logger)
}

func applyScanFlags(cmd *cobra.Command, cfg *config.Config) error {
	var err error
	if cfg.BatchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return err
	}
	if cfg.OutputDir, err = cmd.Flags().GetString("output-dir"); err != nil {
		return err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return err
	}
	return nil
}

// scanSnapshot returns the state to scan with: --goal when given, the
// stored state otherwise, and the defaults when the store cannot be read.
func scanSnapshot(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (state.Snapshot, error) {
	if cmd.Flags().Changed("goal") {
		goal, err := cmd.Flags().GetString("goal")
		if err != nil {
			return state.Snapshot{}, err
		}
		return state.State{Goal: goal, Enabled: true}.Snapshot(), nil
	}

	store, err := openStore(cfg)
	if err != nil {
		logger.Warn("settings store unavailable, using defaults", "error", err)
		return state.Default().Snapshot(), nil
	}
	defer store.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, cfg.FetchTimeout)
	defer cancel()
	st, err := store.FetchState(fetchCtx)
	if err != nil {
		logger.Warn("settings store unavailable, using defaults", "error", err)
		return state.Default().Snapshot(), nil
	}
	return st.Snapshot(), nil
}

// runScan processes every file and writes one report for the successful ones.
func runScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, snap state.Snapshot, paths []string, logger *slog.Logger) error {
	sel, err := cfg.Selectors()
	if err != nil {
		return err
	}

	opts := pipeline.FileOptions{
		Selectors: sel,
		Snapshot:  snap,
		BadgeText: cfg.BadgeText,
		OutputDir: cfg.OutputDir,
		Logger:    logger,
	}
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline { return pipeline.NewFilePipeline(opts) },
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	var failed []error
	jobs, batchErr := bp.ProcessBatch(ctx, paths)
	results := make([]*model.ScanResult, 0, len(jobs))
	for _, job := range jobs {
		if job.Err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", job.Path, job.Err))
			continue
		}
		results = append(results, job.Result)
		if job.OutputPath != "" {
			logger.Info("wrote annotated page", "file", job.OutputPath)
		}
	}

	if err := outputReport(cmd, cfg, results); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if batchErr != nil {
		return batchErr
	}
	if len(failed) > 0 {
		return fmt.Errorf("%d of %d file(s) failed: %w", len(failed), len(paths), errors.Join(failed...))
	}
	return nil
}
