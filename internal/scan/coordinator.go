// Package scan runs one classification pass over every content item of a
// document.
//
// A pass either classifies (enabled, usable goal) or clears (disabled, or no
// usable goal). Classification enumerates items matching the configured
// structural selectors in document order, extracts each title from the
// first title selector that yields non-empty text (falling back to a title
// attribute), and marks the item relevant or irrelevant. Items without a
// title are skipped and keep their current annotation.
//
// The whole pass runs inside dom.Document.Update, so it sees one consistent
// tree and the keyword set and enabled flag it was called with never change
// mid-pass.
package scan

import (
	"errors"
	"log/slog"
	"time"

	"golang.org/x/net/html"

	"github.com/nao1215/focusfeed/internal/annotate"
	"github.com/nao1215/focusfeed/internal/dom"
	"github.com/nao1215/focusfeed/internal/keyword"
	"github.com/nao1215/focusfeed/internal/metrics"
	"github.com/nao1215/focusfeed/internal/model"
	"github.com/nao1215/focusfeed/internal/relevance"
	"github.com/nao1215/focusfeed/internal/state"
)

var (
	// ErrNoItemSelectors is returned when a Coordinator has no item selectors.
	ErrNoItemSelectors = errors.New("no item selectors configured")

	// ErrNoTitleSelectors is returned when a Coordinator has no title selectors.
	ErrNoTitleSelectors = errors.New("no title selectors configured")
)

// Coordinator drives classification and annotation over a document.
type Coordinator struct {
	doc       *dom.Document
	items     dom.Selectors
	titles    dom.Selectors
	annotator *annotate.Controller

	// source labels results and log lines.
	source string

	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithAnnotator sets the annotation controller.
// The default is annotate.New() with no thumbnail selectors.
func WithAnnotator(c *annotate.Controller) Option {
	return func(co *Coordinator) {
		co.annotator = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(co *Coordinator) {
		co.logger = logger
	}
}

// WithMetrics sets the metrics sink. Nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(co *Coordinator) {
		co.metrics = m
	}
}

// WithSource sets the name recorded in scan results.
func WithSource(source string) Option {
	return func(co *Coordinator) {
		co.source = source
	}
}

// New creates a Coordinator for doc.
func New(doc *dom.Document, items, titles dom.Selectors, opts ...Option) (*Coordinator, error) {
	if len(items) == 0 {
		return nil, ErrNoItemSelectors
	}
	if len(titles) == 0 {
		return nil, ErrNoTitleSelectors
	}

	co := &Coordinator{
		doc:    doc,
		items:  items,
		titles: titles,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(co)
	}
	if co.annotator == nil {
		co.annotator = annotate.New()
	}
	if co.logger == nil {
		co.logger = slog.Default()
	}
	return co, nil
}

// Scan runs one pass. When enabled is false or keywords is empty every
// annotated item is cleared and nothing is classified. Otherwise every
// enumerated item is classified and annotated in enumeration order.
func (co *Coordinator) Scan(keywords keyword.Set, enabled bool) *model.ScanResult {
	result := &model.ScanResult{
		Source:    co.source,
		Location:  co.doc.Location(),
		Keywords:  keywords.Sorted(),
		Enabled:   enabled,
		Mode:      model.ModeClassify,
		StartedAt: co.now(),
		Items:     make([]model.ItemResult, 0),
	}
	if !enabled || keywords.IsEmpty() {
		result.Mode = model.ModeClear
	}

	co.doc.Update(func(root *html.Node) {
		if result.Mode == model.ModeClear {
			co.clearAll(root, result)
			return
		}
		co.classifyAll(root, keywords, result)
	})
	result.Duration = co.now().Sub(result.StartedAt)

	co.metrics.ObserveScan(result)
	co.logger.Debug("scan finished",
		"source", co.source,
		"mode", result.Mode.String(),
		"keywords", result.Keywords,
		"examined", result.Examined,
		"marked", result.Marked,
		"cleared", result.Cleared,
		"skipped", result.Skipped,
		"duration", result.Duration,
	)
	return result
}

// ScanSnapshot runs one pass with the keywords and enabled flag of snap and
// records its goal in the result.
func (co *Coordinator) ScanSnapshot(snap state.Snapshot) *model.ScanResult {
	result := co.Scan(snap.Keywords, snap.Enabled)
	result.Goal = snap.Goal
	return result
}

// classifyAll classifies every enumerated item.
func (co *Coordinator) classifyAll(root *html.Node, keywords keyword.Set, result *model.ScanResult) {
	for _, item := range co.Enumerate(root) {
		result.Cleared += co.clearNested(item)

		title := co.ExtractTitle(item)
		if title == "" {
			co.logger.Debug("skipping item without title", "source", co.source, "tag", item.Data)
			result.Record(model.ItemResult{Verdict: model.VerdictSkipped})
			continue
		}

		matched := relevance.MatchingKeyword(keywords, title)
		if matched != "" {
			result.Record(model.ItemResult{
				Title:   title,
				Verdict: model.VerdictRelevant,
				Keyword: matched,
				Changed: co.annotator.MarkRelevant(item),
			})
			continue
		}
		result.Record(model.ItemResult{
			Title:   title,
			Verdict: model.VerdictIrrelevant,
			Changed: co.annotator.MarkIrrelevant(item),
		})
	}
}

// clearAll removes the annotation from every marked item in the document,
// whether or not it still matches an item selector.
func (co *Coordinator) clearAll(root *html.Node, result *model.ScanResult) {
	var marked []*html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if annotate.IsMarked(n) {
			marked = append(marked, n)
		}
		return true
	})

	for _, item := range marked {
		result.Record(model.ItemResult{
			Title:   co.ExtractTitle(item),
			Verdict: model.VerdictRelevant,
			Changed: co.annotator.MarkRelevant(item),
		})
	}
}

// Enumerate returns every element under root matching at least one item
// selector, in document order, each element once. An item owns its whole
// subtree: elements nested inside an item are not items themselves.
func (co *Coordinator) Enumerate(root *html.Node) []*html.Node {
	var items []*html.Node
	dom.Walk(root, func(n *html.Node) bool {
		if annotate.IsBadge(n) {
			return false
		}
		if co.items.MatchAny(n) {
			items = append(items, n)
			return false
		}
		return true
	})
	return items
}

// clearNested removes marks left on elements inside item, e.g. by an
// earlier layout, and returns how many it cleared.
func (co *Coordinator) clearNested(item *html.Node) int {
	var nested []*html.Node
	for c := item.FirstChild; c != nil; c = c.NextSibling {
		dom.Walk(c, func(n *html.Node) bool {
			if annotate.IsMarked(n) {
				nested = append(nested, n)
			}
			return true
		})
	}

	cleared := 0
	for _, n := range nested {
		if co.annotator.MarkRelevant(n) {
			cleared++
		}
	}
	return cleared
}

// ExtractTitle returns the display title of item: the text of the first
// title selector match inside item with non-empty text, else that match's
// title attribute. When a selector matches item itself only item's title
// attribute is used, never its whole text. Selectors are tried in priority
// order; an empty string means no title could be found.
func (co *Coordinator) ExtractTitle(item *html.Node) string {
	for _, sel := range co.titles {
		if sel.Match(item) {
			if title := attrTitle(item); title != "" {
				return title
			}
		}

		m := sel.FirstDescendant(item)
		if m == nil || annotate.IsBadge(m) {
			continue
		}
		if text := dom.TextContent(m, annotate.IsBadge); text != "" {
			return text
		}
		if title := attrTitle(m); title != "" {
			return title
		}
	}
	return ""
}

func attrTitle(n *html.Node) string {
	attr, _ := dom.Attr(n, "title")
	return dom.CollapseSpace(attr)
}
