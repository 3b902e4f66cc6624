package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/focusfeed/internal/model"
)

// createTestResults returns one classify and one clear result.
func createTestResults() []*model.ScanResult {
	classify := &model.ScanResult{
		Source:    "home.html",
		Location:  "https://www.youtube.com/",
		Goal:      "I want to learn Rust programming",
		Keywords:  []string{"learn", "programming", "rust"},
		Enabled:   true,
		Mode:      model.ModeClassify,
		StartedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Items:     []model.ItemResult{},
	}
	classify.Record(model.ItemResult{Title: "Rust ownership explained", Verdict: model.VerdictRelevant, Keyword: "rust"})
	classify.Record(model.ItemResult{Title: "Cute cat compilation", Verdict: model.VerdictIrrelevant, Changed: true})
	classify.Record(model.ItemResult{Verdict: model.VerdictSkipped})

	clear := &model.ScanResult{
		Source:  "subscriptions.html",
		Enabled: false,
		Mode:    model.ModeClear,
		Items:   []model.ItemResult{},
	}
	clear.Record(model.ItemResult{Verdict: model.VerdictRelevant, Changed: true})

	return []*model.ScanResult{classify, clear}
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestResults()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"Source:   home.html",
			"Keywords: learn, programming, rust",
			"examined 3 items: 1 relevant, 1 irrelevant, 1 skipped (1 marked, 0 cleared)",
			"Source:   subscriptions.html",
			"cleared 1 of 1 annotated items",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q:\n%s", want, output)
			}
		}
	})

	t.Run("writes item table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(createTestResults()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Cute cat compilation") {
			t.Error("expected output to contain item title")
		}
		if !strings.Contains(output, "irrelevant") {
			t.Error("expected output to contain verdict")
		}
		if strings.Contains(output, "\x1b[") {
			t.Error("expected no ANSI colors by default")
		}
	})

	t.Run("hides items when disabled", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithItems(false)).Write(createTestResults()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "Cute cat compilation") {
			t.Error("expected item table to be hidden")
		}
	})

	t.Run("colors verdicts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithColor(true)).Write(createTestResults()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// Colors may be suppressed by NO_COLOR or TERM=dumb; the verdict
		// text must survive either way.
		if !strings.Contains(buf.String(), "irrelevant") {
			t.Error("expected verdict in colored output")
		}
	})

	t.Run("returns bytes written", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewSimpleWriter(&buf).Write(createTestResults())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != buf.Len() {
			t.Errorf("expected %d bytes, got %d", buf.Len(), n)
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes decodable results", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestResults()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded []map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}
		if len(decoded) != 2 {
			t.Fatalf("expected 2 results, got %d", len(decoded))
		}
		if decoded[0]["mode"] != "classify" || decoded[1]["mode"] != "clear" {
			t.Errorf("unexpected modes %v / %v", decoded[0]["mode"], decoded[1]["mode"])
		}
		items, _ := decoded[0]["items"].([]any)
		if len(items) != 3 {
			t.Fatalf("expected 3 items, got %d", len(items))
		}
		second, _ := items[1].(map[string]any)
		if second["verdict"] != "irrelevant" {
			t.Errorf("expected verdict by name, got %v", second["verdict"])
		}
	})

	t.Run("compact by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(createTestResults()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected single-line output")
		}
	})

	t.Run("pretty print", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestResults()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  {") {
			t.Errorf("expected indented output:\n%s", buf.String())
		}
	})

	t.Run("nil results encode as empty array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != "[]" {
			t.Errorf("expected [], got %q", got)
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes sections and chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(createTestResults()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# focusfeed Report",
			"## home.html",
			"## subscriptions.html",
			"```mermaid",
			"pie",
			"Irrelevant",
			"Cute cat compilation",
			"`learn`, `programming`, `rust`",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q:\n%s", want, output)
			}
		}
	})

	t.Run("empty results", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "No documents were scanned.") {
			t.Errorf("expected empty notice:\n%s", buf.String())
		}
	})
}

// failingWriter is a Writer that always fails.
type failingWriter struct{}

func (failingWriter) Write([]*model.ScanResult) (int, error) {
	return 0, errors.New("write failed")
}

// TestMultiWriter tests writing to several writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		mw := NewMultiWriter(NewSimpleWriter(&a), NewJSONWriter(&b))
		n, err := mw.Write(createTestResults())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != a.Len()+b.Len() {
			t.Errorf("expected %d bytes, got %d", a.Len()+b.Len(), n)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var b bytes.Buffer
		mw := NewMultiWriter(failingWriter{}, NewJSONWriter(&b))
		if _, err := mw.Write(createTestResults()); err == nil {
			t.Error("expected error")
		}
		if b.Len() != 0 {
			t.Error("expected later writers to be skipped")
		}
	})
}

// TestTruncateString tests the truncation helper.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "short", max: 10, want: "short"},
		{in: "exactly10!", max: 10, want: "exactly10!"},
		{in: "a longer title here", max: 10, want: "a longe..."},
		{in: "abcdef", max: 3, want: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := truncateString(tt.in, tt.max); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
