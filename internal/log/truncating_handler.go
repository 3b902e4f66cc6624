package log

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

// DefaultMaxValueLen is the number of runes kept from a string attribute.
const DefaultMaxValueLen = 120

// Ellipsis marks a clipped value.
const Ellipsis = "…"

// TruncatingHandler wraps an slog.Handler and clips string attribute
// values longer than a limit before passing records on.
type TruncatingHandler struct {
	handler slog.Handler
	max     int
}

// NewTruncatingHandler wraps handler. A nil handler uses
// slog.Default().Handler(); a non-positive max uses DefaultMaxValueLen.
func NewTruncatingHandler(handler slog.Handler, max int) *TruncatingHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if max <= 0 {
		max = DefaultMaxValueLen
	}
	return &TruncatingHandler{handler: handler, max: max}
}

// Enabled delegates to the wrapped handler.
func (h *TruncatingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle clips the record's attributes and passes it on.
func (h *TruncatingHandler) Handle(ctx context.Context, r slog.Record) error {
	clipped := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clipped.AddAttrs(h.clipAttr(a))
		return true
	})
	return h.handler.Handle(ctx, clipped)
}

// WithAttrs returns a handler with the clipped attributes added.
func (h *TruncatingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clipped := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clipped[i] = h.clipAttr(a)
	}
	return &TruncatingHandler{handler: h.handler.WithAttrs(clipped), max: h.max}
}

// WithGroup returns a handler with the given group name.
func (h *TruncatingHandler) WithGroup(name string) slog.Handler {
	return &TruncatingHandler{handler: h.handler.WithGroup(name), max: h.max}
}

func (h *TruncatingHandler) clipAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		clipped := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			clipped[i] = h.clipAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(clipped...)}
	case slog.KindString:
		return slog.String(a.Key, Clip(a.Value.String(), h.max))
	default:
		return a
	}
}

// Clip shortens s to max runes, replacing the tail with Ellipsis.
func Clip(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + Ellipsis
		}
		n++
	}
	return s
}

func level(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// NewTextLogger returns a text logger at warn level, or debug when verbose.
func NewTextLogger(w io.Writer, verbose bool) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewTruncatingHandler(h, DefaultMaxValueLen))
}

// NewJSONLogger returns a JSON logger at warn level, or debug when verbose.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level(verbose)})
	return slog.New(NewTruncatingHandler(h, DefaultMaxValueLen))
}

// NewLogger picks text output for terminals and JSON for everything else.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	if IsTerminal(w) {
		return NewTextLogger(w, verbose)
	}
	return NewJSONLogger(w, verbose)
}

// IsTerminal reports whether w is a terminal, including Cygwin ptys.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
