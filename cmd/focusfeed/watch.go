package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/focusfeed/internal/annotate"
	"github.com/nao1215/focusfeed/internal/config"
	"github.com/nao1215/focusfeed/internal/dom"
	"github.com/nao1215/focusfeed/internal/engine"
	"github.com/nao1215/focusfeed/internal/metrics"
	"github.com/nao1215/focusfeed/internal/model"
	"github.com/nao1215/focusfeed/internal/scan"
	"github.com/nao1215/focusfeed/internal/state"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Keep a page annotated while it and the goal change",
		Long: `Watch loads a saved page and keeps it annotated: the page is rescanned
when the file changes on disk, when its canonical address changes, and
immediately when the goal or toggle changes in the settings store.

Notifications can also be piped in as JSON lines with --messages:
  {"type":"GOAL_UPDATED","goal":"learn rust"}
  {"type":"TOGGLE_CHANGED","isEnabled":false}

Examples:
  # Keep live.html annotated while home.html is re-saved
  focusfeed watch home.html -o live.html

  # Relay notifications from stdin and expose metrics
  producer | focusfeed watch home.html --messages - --metrics-addr :9090`,
		Args: cobra.ExactArgs(1),
		RunE: runWatchCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Rewrite the annotated page to this file after every scan")
	cmd.Flags().String("messages", "",
		`Read JSON-lines notifications from this file ("-" for stdin)`)
	cmd.Flags().String("metrics-addr", "",
		"Serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().Duration("duration", 0,
		"Stop after this long (default: until interrupted)")
	cmd.Flags().Bool("quiet", false,
		"Do not print a line per scan")

	return cmd
}

// watchOptions are the watch-specific flags.
type watchOptions struct {
	input       string
	output      string
	messages    string
	metricsAddr string
	duration    time.Duration
	quiet       bool
}

func getWatchOptions(cmd *cobra.Command, args []string) (watchOptions, error) {
	opts := watchOptions{input: args[0]}
	var err error
	if opts.output, err = cmd.Flags().GetString("output"); err != nil {
		return opts, err
	}
	if opts.messages, err = cmd.Flags().GetString("messages"); err != nil {
		return opts, err
	}
	if opts.metricsAddr, err = cmd.Flags().GetString("metrics-addr"); err != nil {
		return opts, err
	}
	if opts.duration, err = cmd.Flags().GetDuration("duration"); err != nil {
		return opts, err
	}
	if opts.quiet, err = cmd.Flags().GetBool("quiet"); err != nil {
		return opts, err
	}
	if opts.output != "" && samePath(opts.input, opts.output) {
		return opts, fmt.Errorf("output %s is the watched page; choose another file", opts.output)
	}
	return opts, nil
}

// samePath reports whether a and b name the same file, by cleaned absolute
// path or, when both exist, by file identity.
func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA == nil && errB == nil && absA == absB {
		return true
	}
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

func runWatchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	opts, err := getWatchOptions(cmd, args)
	if err != nil {
		return err
	}
	logger := setupLogger(cmd, cfg.Verbose)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()
	if opts.duration > 0 {
		var stop context.CancelFunc
		ctx, stop = context.WithTimeout(ctx, opts.duration)
		defer stop()
	}

	return runWatch(ctx, cmd, cfg, opts, logger)
}

func runWatch(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts watchOptions, logger *slog.Logger) error {
	sel, err := cfg.Selectors()
	if err != nil {
		return err
	}

	doc, err := loadDocument(opts.input)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	coord, err := scan.New(doc, sel.Items, sel.Titles,
		scan.WithAnnotator(annotate.New(
			annotate.WithThumbnailSelectors(sel.Thumbnails),
			annotate.WithBadgeText(cfg.BadgeText),
		)),
		scan.WithSource(opts.input),
		scan.WithMetrics(m),
		scan.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	var source state.Source = store
	if opts.messages != "" {
		relay := state.NewRelay(state.WithBacking(store), state.WithRelayLogger(logger))
		defer relay.Close()
		if err := startPump(ctx, cmd, relay, opts.messages, logger); err != nil {
			return err
		}
		source = relay
	}

	out := cmd.OutOrStdout()
	eng := engine.New(doc, coord, source,
		engine.WithDebounce(cfg.Debounce),
		engine.WithPollInterval(cfg.PollInterval),
		engine.WithFetchTimeout(cfg.FetchTimeout),
		engine.WithLogger(logger),
		engine.WithMetrics(m),
		engine.WithOnScan(func(r *model.ScanResult) {
			if opts.output != "" {
				if err := writeDocument(doc, opts.output); err != nil {
					logger.Error("failed to write annotated page", "file", opts.output, "error", err)
				}
			}
			if !opts.quiet {
				fmt.Fprintf(out, "%s %s\n", r.StartedAt.Format(time.TimeOnly), r.Summary())
			}
		}),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(ctx) })
	g.Go(func() error { return store.Watch(ctx, cfg.PollInterval) })
	g.Go(func() error {
		return newFileReloader(opts.input, doc, logger).Run(ctx, cfg.PollInterval)
	})
	if opts.metricsAddr != "" {
		g.Go(func() error { return serveMetrics(ctx, opts.metricsAddr, reg, logger) })
	}
	return g.Wait()
}

func loadDocument(path string) (*dom.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := dom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// writeDocument renders doc to path through a temporary file so readers
// never see a partial page.
func writeDocument(doc *dom.Document, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".focusfeed-*.html")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := doc.Render(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// startPump relays JSON-lines notifications from path until it is
// exhausted. The reader is not waited for on shutdown since stdin may
// never reach EOF.
func startPump(ctx context.Context, cmd *cobra.Command, relay *state.Relay, path string, logger *slog.Logger) error {
	var r io.Reader
	var closer io.Closer
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open messages %s: %w", path, err)
		}
		r, closer = f, f
	}

	go func() {
		if closer != nil {
			defer closer.Close()
		}
		if err := relay.Pump(ctx, r); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("message relay stopped", "error", err)
		}
	}()
	return nil
}

// serveMetrics exposes reg on addr under /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// fileReloader reloads a Document when its source file changes on disk.
type fileReloader struct {
	path    string
	doc     *dom.Document
	logger  *slog.Logger
	modTime time.Time
	size    int64
}

func newFileReloader(path string, doc *dom.Document, logger *slog.Logger) *fileReloader {
	r := &fileReloader{path: path, doc: doc, logger: logger}
	if info, err := os.Stat(path); err == nil {
		r.modTime, r.size = info.ModTime(), info.Size()
	}
	return r
}

// Run checks the file every interval until ctx is done.
func (r *fileReloader) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := r.Check(); err != nil {
				r.logger.Warn("failed to reload page", "file", r.path, "error", err)
			}
		}
	}
}

// Check reloads the document if the file's size or modification time
// changed, and reports whether it did.
func (r *fileReloader) Check() (bool, error) {
	info, err := os.Stat(r.path)
	if err != nil {
		return false, err
	}
	if info.ModTime().Equal(r.modTime) && info.Size() == r.size {
		return false, nil
	}

	f, err := os.Open(r.path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	if err := r.doc.Reload(f); err != nil {
		return false, err
	}
	r.modTime, r.size = info.ModTime(), info.Size()
	r.logger.Debug("page reloaded", "file", r.path, "location", r.doc.Location())
	return true, nil
}
