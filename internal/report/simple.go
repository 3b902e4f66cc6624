package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/nao1215/focusfeed/internal/model"
)

// maxTitleWidth bounds the title column of the item table.
const maxTitleWidth = 60

// SimpleWriter outputs human-readable text with one item table per scan.
type SimpleWriter struct {
	baseWriter

	// color highlights verdicts with ANSI colors.
	color bool

	// showItems renders the per-item table.
	showItems bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithColor enables ANSI colors. The CLI turns it on for terminals only.
func WithColor(color bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.color = color
	}
}

// WithItems controls whether the per-item table is written.
func WithItems(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showItems = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
// Item tables are shown and colors are off by default.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showItems:  true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs every result in order.
func (w *SimpleWriter) Write(results []*model.ScanResult) (int, error) {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		w.writeResult(&sb, r)
	}
	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeResult(sb *strings.Builder, r *model.ScanResult) {
	fmt.Fprintf(sb, "Source:   %s\n", orDash(r.Source))
	if r.Location != "" {
		fmt.Fprintf(sb, "Location: %s\n", r.Location)
	}
	fmt.Fprintf(sb, "Goal:     %s\n", orDash(r.Goal))
	fmt.Fprintf(sb, "Keywords: %s\n", orDash(strings.Join(r.Keywords, ", ")))
	fmt.Fprintf(sb, "Mode:     %s\n", r.Mode)
	fmt.Fprintf(sb, "Result:   %s\n", r.Summary())

	if !w.showItems || len(r.Items) == 0 {
		return
	}
	sb.WriteString(w.renderItems(r.Items))
	sb.WriteString("\n")
}

func (w *SimpleWriter) renderItems(items []model.ItemResult) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Verdict", "Keyword", "Title", "Changed"})

	for _, it := range items {
		changed := ""
		if it.Changed {
			changed = "yes"
		}
		tw.AppendRow(table.Row{
			strconv.Itoa(it.Index + 1),
			w.verdict(it.Verdict),
			orDash(it.Keyword),
			truncateString(orDash(it.Title), maxTitleWidth),
			changed,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func (w *SimpleWriter) verdict(v model.Verdict) string {
	if !w.color {
		return v.String()
	}
	switch v {
	case model.VerdictRelevant:
		return text.Colors{text.FgGreen}.Sprint(v.String())
	case model.VerdictIrrelevant:
		return text.Colors{text.FgRed}.Sprint(v.String())
	default:
		return text.Colors{text.FgYellow}.Sprint(v.String())
	}
}
