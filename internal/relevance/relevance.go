// Package relevance decides whether a content item's title is relevant to a
// focus goal.
//
// The decision is binary. A title is relevant when at least one keyword is a
// case-insensitive substring of it. Matching is substring containment, not
// whole-word matching: the keyword "art" matches "smart contract" and
// "chart". That precision limitation is accepted behavior.
//
// An empty keyword set means there is no usable goal, and every title is then
// relevant (fail-open): a missing goal must never hide content.
package relevance

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/focusfeed/internal/keyword"
)

// IsRelevant reports whether title is relevant to the given keywords.
func IsRelevant(keywords keyword.Set, title string) bool {
	if keywords.IsEmpty() {
		return true
	}
	return MatchingKeyword(keywords, title) != ""
}

// MatchingKeyword returns the lexically first keyword contained in title,
// or an empty string when none matches. Keywords and title are compared
// case-insensitively; the keyword is returned as given.
func MatchingKeyword(keywords keyword.Set, title string) string {
	if keywords.IsEmpty() || title == "" {
		return ""
	}

	fold := cases.Lower(language.Und)
	lower := fold.String(title)
	for _, kw := range keywords.Sorted() {
		if strings.Contains(lower, fold.String(kw)) {
			return kw
		}
	}
	return ""
}
