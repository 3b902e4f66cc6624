// Package log builds the slog loggers used by focusfeed.
//
// Feed titles and focus goals end up in log attributes, and a single page
// can carry hundreds of entries. TruncatingHandler wraps any slog.Handler
// and clips long string values so that debug output stays readable.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
// NewLogger writes text when the writer is a terminal and JSON otherwise.
package log
