package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/focusfeed/internal/model"
)

// JSONWriter outputs results as a JSON array.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output with the given prefix and indent.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write encodes results followed by a newline. A nil slice encodes as [].
func (w *JSONWriter) Write(results []*model.ScanResult) (int, error) {
	if results == nil {
		results = []*model.ScanResult{}
	}

	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(results, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(results)
	}
	if err != nil {
		return 0, err
	}
	return w.output.Write(append(data, '\n'))
}
