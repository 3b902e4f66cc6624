// Package keyword turns a free-text focus goal into a normalized keyword set.
//
// Extraction lower-cases the goal, replaces every character outside
// [a-z0-9] and whitespace with a space, splits on whitespace runs and drops
// tokens of two characters or fewer as well as common English function
// words (articles, pronouns, auxiliary verbs, prepositions).
//
// A Set is always derived from the whole goal text. It is never patched in
// place; callers recompute it whenever the goal changes.
package keyword
