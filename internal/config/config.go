package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/focusfeed/internal/annotate"
	"github.com/nao1215/focusfeed/internal/dom"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "focusfeed"

	// DefaultDebounce is the quiet period after insertions or navigation
	// before a rescan runs.
	DefaultDebounce = 300 * time.Millisecond

	// DefaultPollInterval is how often the page address is compared with the
	// last one seen.
	DefaultPollInterval = time.Second

	// DefaultFetchTimeout bounds the wait for the settings store at startup.
	DefaultFetchTimeout = 5 * time.Second

	// DefaultBatchSize is the number of files the scan command processes
	// concurrently.
	DefaultBatchSize = 4
)

// Default selectors match the video renderers of the YouTube layouts.
var (
	DefaultItemSelectors = []string{
		"ytd-rich-item-renderer",
		"ytd-video-renderer",
		"ytd-compact-video-renderer",
		"ytd-grid-video-renderer",
		"ytd-reel-item-renderer",
	}

	DefaultTitleSelectors = []string{
		"#video-title",
		"#video-title-link",
		"h3 a",
		"[title]",
	}

	DefaultThumbnailSelectors = []string{
		"ytd-thumbnail",
		"#thumbnail",
	}
)

// Config holds all focusfeed options. It is populated from defaults, then
// the config file, then CLI flags.
type Config struct {
	// ItemSelectors locate feed entries. Order does not matter; matches are
	// processed in document order.
	ItemSelectors []string

	// TitleSelectors locate the title inside an item, tried in order.
	TitleSelectors []string

	// ThumbnailSelectors locate where the badge goes inside an item.
	// Without a match the badge is appended to the item itself.
	ThumbnailSelectors []string

	// BadgeText is the label shown on dimmed items.
	BadgeText string

	Debounce     time.Duration
	PollInterval time.Duration
	FetchTimeout time.Duration

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is an explicit config file. When empty .focusfeed is
	// searched in the current directory, then the home directory.
	ConfigFilePath string

	// DataDir holds the settings database. Defaults to XDGDataDir.
	DataDir string

	// BatchSize is the number of files scanned concurrently.
	BatchSize int

	// JSONReport and MarkdownReport select the report format; the default
	// is a human-readable table. They are mutually exclusive.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile receives the report instead of stdout.
	ReportFile string

	// OutputDir receives the annotated documents written by scan.
	OutputDir string
}

// NewConfig returns a Config with default values.
func NewConfig() *Config {
	return &Config{
		ItemSelectors:      append([]string(nil), DefaultItemSelectors...),
		TitleSelectors:     append([]string(nil), DefaultTitleSelectors...),
		ThumbnailSelectors: append([]string(nil), DefaultThumbnailSelectors...),
		BadgeText:          annotate.DefaultBadgeText,
		Debounce:           DefaultDebounce,
		PollInterval:       DefaultPollInterval,
		FetchTimeout:       DefaultFetchTimeout,
		DataDir:            XDGDataDir(),
		BatchSize:          DefaultBatchSize,
	}
}

// XDGDataDir returns the XDG data directory for focusfeed.
// On Linux: ~/.local/share/focusfeed
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for focusfeed.
// On Linux: ~/.config/focusfeed
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Apply overrides c with the values set in f.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if len(f.ItemSelectors) > 0 {
		c.ItemSelectors = f.ItemSelectors
	}
	if len(f.TitleSelectors) > 0 {
		c.TitleSelectors = f.TitleSelectors
	}
	if len(f.ThumbnailSelectors) > 0 {
		c.ThumbnailSelectors = f.ThumbnailSelectors
	}
	if f.BadgeText != "" {
		c.BadgeText = f.BadgeText
	}
	if f.DebounceMs != 0 {
		c.Debounce = time.Duration(f.DebounceMs) * time.Millisecond
	}
	if f.PollMs != 0 {
		c.PollInterval = time.Duration(f.PollMs) * time.Millisecond
	}
	if f.FetchTimeoutMs != 0 {
		c.FetchTimeout = time.Duration(f.FetchTimeoutMs) * time.Millisecond
	}
	if f.DataDir != "" {
		c.DataDir = f.DataDir
	}
}

// Validate checks c and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.ItemSelectors) == 0 {
		return ErrNoItemSelectors
	}
	if len(c.TitleSelectors) == 0 {
		return ErrNoTitleSelectors
	}
	if _, err := c.Selectors(); err != nil {
		return err
	}
	if c.Debounce <= 0 {
		return ErrInvalidDebounce
	}
	if c.PollInterval <= 0 {
		return ErrInvalidPollInterval
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidFetchTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}

// Selectors holds the compiled selector lists of a Config.
type Selectors struct {
	Items      dom.Selectors
	Titles     dom.Selectors
	Thumbnails dom.Selectors
}

// Selectors compiles the configured selector lists.
func (c *Config) Selectors() (Selectors, error) {
	var (
		s   Selectors
		err error
	)
	if s.Items, err = dom.CompileAll(c.ItemSelectors); err != nil {
		return Selectors{}, fmt.Errorf("%w: item: %w", ErrInvalidSelector, err)
	}
	if s.Titles, err = dom.CompileAll(c.TitleSelectors); err != nil {
		return Selectors{}, fmt.Errorf("%w: title: %w", ErrInvalidSelector, err)
	}
	if s.Thumbnails, err = dom.CompileAll(c.ThumbnailSelectors); err != nil {
		return Selectors{}, fmt.Errorf("%w: thumbnail: %w", ErrInvalidSelector, err)
	}
	return s, nil
}
