// Package annotate applies and removes the visual "off goal" annotation on a
// single content item.
//
// The annotation is encoded entirely on the item: a marker attribute, a dim
// style appended to the item's style attribute (the original value is saved
// alongside and restored on clear) and one badge element attached to the
// item's thumbnail region. A Controller keeps no per-item state, so a fresh
// Controller, or a reloaded document, reads the current status straight from
// the tree.
package annotate

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/focusfeed/internal/dom"
)

// Attribute names written on annotated items.
const (
	// AttrMarked flags an item as currently annotated irrelevant.
	AttrMarked = "data-focusfeed-dimmed"

	// AttrSavedStyle keeps the item's original style attribute while dimmed.
	AttrSavedStyle = "data-focusfeed-style"

	// AttrBadge flags badge elements owned by focusfeed.
	AttrBadge = "data-focusfeed-badge"

	// BadgeClass is the class attribute of badge elements.
	BadgeClass = "focusfeed-badge"
)

// DefaultBadgeText is the badge label used when none is configured.
const DefaultBadgeText = "Off goal"

// DimStyle is the declaration appended to an irrelevant item's style.
const DimStyle = "opacity: 0.35; filter: grayscale(80%);"

// badgeStyle positions the badge over the thumbnail corner.
const badgeStyle = "position: absolute; top: 6px; left: 6px; z-index: 10; " +
	"padding: 2px 6px; border-radius: 4px; background: rgba(0, 0, 0, 0.8); " +
	"color: #fff; font-size: 12px; pointer-events: none;"

// Controller marks and clears items.
type Controller struct {
	// thumbnails locate the sub-region a badge is attached to.
	thumbnails dom.Selectors

	// badgeText is the label shown on the badge.
	badgeText string
}

// Option configures a Controller.
type Option func(*Controller)

// WithThumbnailSelectors sets the selectors used to locate an item's
// thumbnail region. The first selector with a match wins; without a match the
// badge is attached to the item itself.
func WithThumbnailSelectors(selectors dom.Selectors) Option {
	return func(c *Controller) {
		c.thumbnails = selectors
	}
}

// WithBadgeText sets the badge label. An empty text keeps the default.
func WithBadgeText(text string) Option {
	return func(c *Controller) {
		if strings.TrimSpace(text) != "" {
			c.badgeText = text
		}
	}
}

// New creates a Controller.
func New(opts ...Option) *Controller {
	c := &Controller{badgeText: DefaultBadgeText}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsMarked reports whether item currently carries the irrelevant annotation.
func IsMarked(item *html.Node) bool {
	return dom.HasAttr(item, AttrMarked)
}

// IsBadge reports whether n is a badge element created by a Controller.
func IsBadge(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && dom.HasAttr(n, AttrBadge)
}

// Badges returns every badge element in item's subtree.
func Badges(item *html.Node) []*html.Node {
	var badges []*html.Node
	dom.Walk(item, func(n *html.Node) bool {
		if IsBadge(n) {
			badges = append(badges, n)
			return false
		}
		return true
	})
	return badges
}

// MarkIrrelevant dims item and attaches one badge. It is a no-op for nil or
// detached items, and for a marked item that already carries exactly one
// badge; a marked item with missing or extra badges gets exactly one again.
// It reports whether the item changed.
func (c *Controller) MarkIrrelevant(item *html.Node) bool {
	if item == nil || item.Type != html.ElementNode || !dom.IsAttached(item) {
		return false
	}
	if IsMarked(item) {
		badges := Badges(item)
		if len(badges) == 1 {
			return false
		}
		for _, b := range badges {
			dom.Detach(b)
		}
		c.badgeHost(item).AppendChild(c.newBadge())
		return true
	}

	if orig, ok := dom.Attr(item, "style"); ok {
		dom.SetAttr(item, AttrSavedStyle, orig)
		dom.SetAttr(item, "style", appendStyle(orig, DimStyle))
	} else {
		dom.SetAttr(item, "style", DimStyle)
	}
	dom.SetAttr(item, AttrMarked, "")

	// Stray badges copied in by the host would otherwise stack up.
	for _, b := range Badges(item) {
		dom.Detach(b)
	}
	c.badgeHost(item).AppendChild(c.newBadge())
	return true
}

// MarkRelevant removes the annotation from item: every badge in its subtree
// is removed and, if the item is marked, its original style is restored. It
// is a no-op for nil or detached items and reports whether the item changed.
func (c *Controller) MarkRelevant(item *html.Node) bool {
	if item == nil || item.Type != html.ElementNode || !dom.IsAttached(item) {
		return false
	}

	changed := false
	for _, b := range Badges(item) {
		dom.Detach(b)
		changed = true
	}

	if !IsMarked(item) {
		return changed
	}

	if saved, ok := dom.Attr(item, AttrSavedStyle); ok {
		dom.SetAttr(item, "style", saved)
		dom.RemoveAttr(item, AttrSavedStyle)
	} else {
		dom.RemoveAttr(item, "style")
	}
	dom.RemoveAttr(item, AttrMarked)
	return true
}

// badgeHost returns the element the badge is attached to.
func (c *Controller) badgeHost(item *html.Node) *html.Node {
	if thumb := c.thumbnails.First(item); thumb != nil && !IsBadge(thumb) {
		return thumb
	}
	return item
}

// newBadge builds a detached badge element.
func (c *Controller) newBadge() *html.Node {
	badge := &html.Node{
		Type:     html.ElementNode,
		Data:     atom.Div.String(),
		DataAtom: atom.Div,
		Attr: []html.Attribute{
			{Key: AttrBadge, Val: ""},
			{Key: "class", Val: BadgeClass},
			{Key: "style", Val: badgeStyle},
		},
	}
	badge.AppendChild(&html.Node{Type: html.TextNode, Data: c.badgeText})
	return badge
}

// appendStyle joins an existing style declaration list with extra.
func appendStyle(orig, extra string) string {
	orig = strings.TrimSpace(orig)
	if orig == "" {
		return extra
	}
	if !strings.HasSuffix(orig, ";") {
		orig += ";"
	}
	return orig + " " + extra
}
