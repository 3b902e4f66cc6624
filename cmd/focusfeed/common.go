package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/focusfeed/internal/config"
	applog "github.com/nao1215/focusfeed/internal/log"
	"github.com/nao1215/focusfeed/internal/model"
	"github.com/nao1215/focusfeed/internal/report"
	"github.com/nao1215/focusfeed/internal/settings"
)

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getStringFlag returns a local or inherited string flag, or "".
func getStringFlag(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return v
}

// buildConfig creates a Config from defaults, the config file and the
// global flags. Command-specific flags are applied by each command.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.ConfigFilePath = getStringFlag(cmd, "config")

	// An explicitly named file must exist; the implicit search may find nothing.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		f, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Apply(f)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	if dir := getStringFlag(cmd, "data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	return cfg, nil
}

// setupLogger installs the default logger on stderr.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	logger := applog.NewLogger(cmd.ErrOrStderr(), verbose)
	slog.SetDefault(logger)
	return logger
}

// openStore opens the settings store in cfg.DataDir.
func openStore(cfg *config.Config) (*settings.Store, error) {
	store, err := settings.Open(cfg.DataDir, settings.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %w", err)
	}
	return store, nil
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// newReportWriter picks the report format from cfg.
func newReportWriter(cfg *config.Config, w io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(w, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w, report.WithColor(applog.IsTerminal(w)))
	}
}

// outputReport writes results to cfg.ReportFile, or to the command's
// stdout when no file is set.
func outputReport(cmd *cobra.Command, cfg *config.Config, results []*model.ScanResult) error {
	if cfg.ReportFile == "" {
		_, err := newReportWriter(cfg, cmd.OutOrStdout()).Write(results)
		return err
	}

	if dir := filepath.Dir(cfg.ReportFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	_, err = newReportWriter(cfg, f).Write(results)
	return err
}
