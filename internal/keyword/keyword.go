package keyword

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MinLength is the shortest token kept as a keyword.
// Tokens with fewer characters carry too little signal for substring matching.
const MinLength = 3

// Set is an unordered set of normalized keywords.
// The zero value (nil) is an empty set and is safe to read.
type Set map[string]struct{}

// Extract derives the keyword set for the given goal text.
// It returns an empty set for empty or whitespace-only input.
func Extract(text string) Set {
	set := make(Set)
	if strings.TrimSpace(text) == "" {
		return set
	}

	for _, token := range strings.Fields(normalize(text)) {
		if len(token) < MinLength || IsStopWord(token) {
			continue
		}
		set[token] = struct{}{}
	}
	return set
}

// normalize lower-cases text and replaces every rune outside [a-z0-9] and
// whitespace with a space.
func normalize(text string) string {
	lower := cases.Lower(language.Und).String(text)

	var sb strings.Builder
	sb.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
			continue
		}
		// Whitespace and every other rune become a separator.
		sb.WriteByte(' ')
	}
	return sb.String()
}

// Len returns the number of keywords in the set.
func (s Set) Len() int {
	return len(s)
}

// IsEmpty reports whether the set holds no keywords.
func (s Set) IsEmpty() bool {
	return len(s) == 0
}

// Contains reports whether keyword is in the set.
func (s Set) Contains(keyword string) bool {
	_, ok := s[keyword]
	return ok
}

// Sorted returns the keywords in lexical order.
// It is used wherever a stable order matters (logs, reports, tests).
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// String returns the keywords joined by a comma in lexical order.
func (s Set) String() string {
	return strings.Join(s.Sorted(), ",")
}
