package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
)

// Document is a mutable HTML tree shared between a host and the engine.
// The zero value is not usable; create one with Parse or ParseString.
type Document struct {
	// mu serializes every read and write of the tree.
	mu sync.Mutex

	// root is the document node of the current tree.
	root *html.Node

	// location is the address of the content currently displayed.
	location string

	// observers receive a signal on every insertion.
	observers map[int]chan struct{}
	nextID    int
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	return &Document{
		root:      root,
		location:  canonicalAddress(root),
		observers: make(map[int]chan struct{}),
	}, nil
}

// ParseString reads an HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Observe registers an insertion observer. The returned channel has a
// buffer of one and coalesces signals: a burst of insertions that happens
// before the observer reads leaves exactly one pending signal. The returned
// func unregisters the observer and is safe to call more than once.
func (d *Document) Observe() (<-chan struct{}, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	ch := make(chan struct{}, 1)
	d.observers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.observers, id)
			d.mu.Unlock()
		})
	}
}

// notifyLocked signals every observer. The caller must hold d.mu.
func (d *Document) notifyLocked() {
	for _, ch := range d.observers {
		select {
		case ch <- struct{}{}:
		default:
			// A signal is already pending.
		}
	}
}

// Update runs fn with exclusive access to the tree. Changes made by fn are
// not announced to observers.
func (d *Document) Update(fn func(root *html.Node)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.root)
}

// Append parses fragment in the context of the first element matching
// parentSelector and appends the resulting nodes to it. It returns the
// number of top-level nodes inserted.
func (d *Document) Append(parentSelector, fragment string) (int, error) {
	sel, err := Compile(parentSelector)
	if err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	parent := sel.First(d.root)
	if parent == nil {
		return 0, fmt.Errorf("%w: %s", ErrNoMatch, parentSelector)
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), parent)
	if err != nil {
		return 0, fmt.Errorf("failed to parse fragment: %w", err)
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	if len(nodes) > 0 {
		d.notifyLocked()
	}
	return len(nodes), nil
}

// Remove detaches every node matching selector and returns how many were
// removed. Removals are not announced to observers.
func (d *Document) Remove(selector string) (int, error) {
	sel, err := Compile(selector)
	if err != nil {
		return 0, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	matches := sel.All(d.root)
	for _, n := range matches {
		Detach(n)
	}
	return len(matches), nil
}

// Reload replaces the whole tree with a freshly parsed document, as a host
// re-render would. Nodes of the previous tree become detached. The location
// is re-derived from the new tree when it declares one.
func (d *Document) Reload(r io.Reader) error {
	root, err := html.Parse(r)
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	old := d.root
	d.root = root
	if loc := canonicalAddress(root); loc != "" {
		d.location = loc
	}
	for c := old.FirstChild; c != nil; {
		next := c.NextSibling
		old.RemoveChild(c)
		c = next
	}
	d.notifyLocked()
	return nil
}

// Navigate changes the current address without touching the tree, as a
// client-side navigation does.
func (d *Document) Navigate(address string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.location = address
}

// Location returns the current address.
func (d *Document) Location() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.location
}

// Render writes the current tree as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

// String returns the current tree as HTML.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

var (
	canonicalLink = MustCompile(`link[rel="canonical"][href]`)
	ogURLMeta     = MustCompile(`meta[property="og:url"][content]`)
)

// canonicalAddress returns the address a document declares for itself.
func canonicalAddress(root *html.Node) string {
	if n := canonicalLink.First(root); n != nil {
		href, _ := Attr(n, "href")
		return strings.TrimSpace(href)
	}
	if n := ogURLMeta.First(root); n != nil {
		content, _ := Attr(n, "content")
		return strings.TrimSpace(content)
	}
	return ""
}
