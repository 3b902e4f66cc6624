package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/focusfeed/internal/model"
)

// MarkdownWriter outputs results as GitHub Flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs one section per result.
func (w *MarkdownWriter) Write(results []*model.ScanResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("focusfeed Report")
	md.PlainText("")

	if len(results) == 0 {
		md.PlainText("No documents were scanned.")
		md.PlainText("")
	}
	for _, r := range results {
		w.writeResult(md, r)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeResult(md *markdown.Markdown, r *model.ScanResult) {
	md.H2(orDash(r.Source))
	md.PlainText("")

	keywords := "-"
	if len(r.Keywords) > 0 {
		keywords = "`" + strings.Join(r.Keywords, "`, `") + "`"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Location", orDash(r.Location)},
			{"Goal", orDash(r.Goal)},
			{"Keywords", keywords},
			{"Mode", r.Mode.String()},
			{"Examined", strconv.Itoa(r.Examined)},
			{"Marked", strconv.Itoa(r.Marked)},
			{"Cleared", strconv.Itoa(r.Cleared)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, r)

	if r.Mode == model.ModeClassify && r.Examined > 0 {
		w.writePieChart(md, r)
	}
	if len(r.Items) > 0 {
		w.writeItems(md, r.Items)
	}
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, r *model.ScanResult) {
	switch {
	case r.Mode == model.ModeClear:
		md.Note(fmt.Sprintf("Filtering is off or the goal has no keywords. %d annotation(s) removed.", r.Cleared))
	case r.Irrelevant > 0:
		md.Importantf("%d of %d item(s) are off-goal and were dimmed.", r.Irrelevant, r.Examined)
	default:
		md.Tip("Every item matches the goal.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, r *model.ScanResult) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Verdicts"),
		piechart.WithShowData(true),
	)
	if r.Relevant > 0 {
		chart.LabelAndIntValue("Relevant", uint64(r.Relevant))
	}
	if r.Irrelevant > 0 {
		chart.LabelAndIntValue("Irrelevant", uint64(r.Irrelevant))
	}
	if r.Skipped > 0 {
		chart.LabelAndIntValue("Skipped", uint64(r.Skipped))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeItems(md *markdown.Markdown, items []model.ItemResult) {
	rows := make([][]string, len(items))
	for i, it := range items {
		changed := ""
		if it.Changed {
			changed = "✓"
		}
		rows[i] = []string{
			strconv.Itoa(it.Index + 1),
			it.Verdict.String(),
			orDash(it.Keyword),
			truncateString(orDash(it.Title), maxTitleWidth),
			changed,
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Verdict", "Keyword", "Title", "Changed"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [focusfeed](https://github.com/nao1215/focusfeed)*")
}
