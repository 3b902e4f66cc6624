package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Attr returns the value of the attribute key on n and whether it exists.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether n carries the attribute key.
func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

// SetAttr sets the attribute key on n, replacing an existing value in place
// or appending a new attribute.
func SetAttr(n *html.Node, key, val string) {
	if n == nil {
		return
	}
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes the attribute key from n. The order of the remaining
// attributes is preserved.
func RemoveAttr(n *html.Node, key string) {
	if n == nil {
		return
	}
	kept := n.Attr[:0]
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			continue
		}
		kept = append(kept, attr)
	}
	n.Attr = kept
}

// IsAttached reports whether n is still part of a document: its parent chain
// must reach a document node. Nodes removed from the tree, or left behind in
// a tree replaced by Reload, are detached.
func IsAttached(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.DocumentNode {
			return true
		}
	}
	return false
}

// Detach removes n from its parent, if it has one.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Walk calls fn for every element node under n (n included) in document
// order. Returning false from fn skips the element's children.
func Walk(n *html.Node, fn func(*html.Node) bool) {
	if n == nil {
		return
	}
	if n.Type == html.ElementNode && !fn(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		Walk(c, fn)
	}
}

// TextContent returns the concatenated text of n's subtree with whitespace
// runs collapsed to single spaces. Subtrees rooted at an element for which
// skip returns true are ignored; skip may be nil.
func TextContent(n *html.Node, skip func(*html.Node) bool) string {
	if n == nil {
		return ""
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
			sb.WriteByte(' ')
			return
		case html.ElementNode:
			if skip != nil && skip(c) {
				return
			}
			// Script and style bodies are not visible text.
			if c.Data == "script" || c.Data == "style" {
				return
			}
		case html.CommentNode:
			return
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	return CollapseSpace(sb.String())
}

// CollapseSpace trims s and replaces every whitespace run with one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
