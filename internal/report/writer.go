package report

import (
	"io"

	"github.com/nao1215/focusfeed/internal/model"
)

// Writer writes scan results in one format.
type Writer interface {
	// Write outputs results and returns the number of bytes written.
	Write(results []*model.ScanResult) (int, error)
}

// MultiWriter writes the same results to several Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs results to every writer and stops on the first error.
func (m *MultiWriter) Write(results []*model.ScanResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(results)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// truncateString shortens s to maxLen runes with a trailing "...".
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
