package dom

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Selector is a compiled CSS selector that remembers its source text.
type Selector struct {
	raw string
	sel cascadia.Selector
}

// Compile parses a CSS selector.
func Compile(raw string) (Selector, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Selector{}, ErrEmptySelector
	}
	sel, err := cascadia.Compile(raw)
	if err != nil {
		return Selector{}, fmt.Errorf("invalid selector %q: %w", raw, err)
	}
	return Selector{raw: raw, sel: sel}, nil
}

// MustCompile is like Compile but panics on error.
// It is intended for package-level selector constants.
func MustCompile(raw string) Selector {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the selector source text.
func (s Selector) String() string {
	return s.raw
}

// Match reports whether n itself matches the selector.
func (s Selector) Match(n *html.Node) bool {
	if s.sel == nil || n == nil {
		return false
	}
	return s.sel.Match(n)
}

// First returns the first node in document order, starting at n itself,
// that matches the selector.
func (s Selector) First(n *html.Node) *html.Node {
	if s.sel == nil || n == nil {
		return nil
	}
	return s.sel.MatchFirst(n)
}

// FirstDescendant is First without n itself.
func (s Selector) FirstDescendant(n *html.Node) *html.Node {
	if s.sel == nil || n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if m := s.sel.MatchFirst(c); m != nil {
			return m
		}
	}
	return nil
}

// All returns every node, starting at n itself, that matches the selector.
func (s Selector) All(n *html.Node) []*html.Node {
	if s.sel == nil || n == nil {
		return nil
	}
	return s.sel.MatchAll(n)
}

// Selectors is an ordered list of compiled selectors.
type Selectors []Selector

// CompileAll compiles every selector in order and stops at the first error.
func CompileAll(raw []string) (Selectors, error) {
	out := make(Selectors, 0, len(raw))
	for _, r := range raw {
		s, err := Compile(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// MatchAny reports whether n matches at least one selector.
func (ss Selectors) MatchAny(n *html.Node) bool {
	for _, s := range ss {
		if s.Match(n) {
			return true
		}
	}
	return false
}

// First returns the first match of the earliest selector that matches
// anything under n. Selector priority wins over document order.
func (ss Selectors) First(n *html.Node) *html.Node {
	for _, s := range ss {
		if m := s.First(n); m != nil {
			return m
		}
	}
	return nil
}

// Strings returns the source text of every selector.
func (ss Selectors) Strings() []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = s.raw
	}
	return out
}
