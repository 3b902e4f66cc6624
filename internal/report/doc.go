// Package report renders scan results.
//
// Writers:
//   - SimpleWriter: terminal output with a table per scan
//   - JSONWriter: the results as a JSON array
//   - MarkdownWriter: GitHub Flavored Markdown with a verdict pie chart
//
// All writers implement Writer, so the CLI picks one by flag and uses it
// the same way.
package report
