package scan

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"

	"github.com/nao1215/focusfeed/internal/annotate"
	"github.com/nao1215/focusfeed/internal/dom"
	"github.com/nao1215/focusfeed/internal/keyword"
	"github.com/nao1215/focusfeed/internal/model"
	"github.com/nao1215/focusfeed/internal/state"
)

const feed = `<html><head><link rel="canonical" href="https://www.youtube.com/"></head><body>
<div id="contents">
  <ytd-rich-item-renderer id="a"><ytd-thumbnail></ytd-thumbnail><a id="video-title">Rust ownership explained</a></ytd-rich-item-renderer>
  <ytd-rich-item-renderer id="b"><ytd-thumbnail></ytd-thumbnail><a id="video-title">Cute cat compilation</a></ytd-rich-item-renderer>
  <ytd-video-renderer id="c"><a id="video-title">   </a><h3><a title="Programming in Go">  </a></h3></ytd-video-renderer>
  <ytd-compact-video-renderer id="d"><span>no title element</span></ytd-compact-video-renderer>
  <ytd-reel-item-renderer id="e"><span id="video-title">Cooking SHORTS</span></ytd-reel-item-renderer>
</div>
</body></html>`

func newCoordinator(t *testing.T, doc *dom.Document) *Coordinator {
	t.Helper()

	items, err := dom.CompileAll([]string{
		"ytd-rich-item-renderer",
		"ytd-video-renderer",
		"ytd-compact-video-renderer",
		"ytd-reel-item-renderer",
	})
	if err != nil {
		t.Fatalf("failed to compile item selectors: %v", err)
	}
	titles, err := dom.CompileAll([]string{"#video-title", "h3 a"})
	if err != nil {
		t.Fatalf("failed to compile title selectors: %v", err)
	}

	co, err := New(doc, items, titles,
		WithAnnotator(annotate.New(annotate.WithThumbnailSelectors(dom.Selectors{dom.MustCompile("ytd-thumbnail")}))),
		WithSource("test"),
	)
	if err != nil {
		t.Fatalf("failed to create coordinator: %v", err)
	}
	return co
}

func parseFeed(t *testing.T) *dom.Document {
	t.Helper()

	doc, err := dom.ParseString(feed)
	if err != nil {
		t.Fatalf("failed to parse feed: %v", err)
	}
	return doc
}

// markedIDs returns the ids of marked items in document order.
func markedIDs(doc *dom.Document) string {
	var ids []string
	doc.Update(func(root *html.Node) {
		dom.Walk(root, func(n *html.Node) bool {
			if annotate.IsMarked(n) {
				id, _ := dom.Attr(n, "id")
				ids = append(ids, id)
			}
			return true
		})
	})
	return strings.Join(ids, ",")
}

func badgeCount(doc *dom.Document) int {
	var n int
	doc.Update(func(root *html.Node) {
		n = len(annotate.Badges(root))
	})
	return n
}

// TestNew tests coordinator construction.
func TestNew(t *testing.T) {
	t.Parallel()

	doc := parseFeed(t)
	sel := dom.Selectors{dom.MustCompile("div")}

	if _, err := New(doc, nil, sel); !errors.Is(err, ErrNoItemSelectors) {
		t.Errorf("expected ErrNoItemSelectors, got %v", err)
	}
	if _, err := New(doc, sel, nil); !errors.Is(err, ErrNoTitleSelectors) {
		t.Errorf("expected ErrNoTitleSelectors, got %v", err)
	}
}

// TestEnumerateAndExtract tests item enumeration and title extraction.
func TestEnumerateAndExtract(t *testing.T) {
	t.Parallel()

	doc := parseFeed(t)
	co := newCoordinator(t, doc)

	var titles []string
	doc.Update(func(root *html.Node) {
		for _, item := range co.Enumerate(root) {
			titles = append(titles, co.ExtractTitle(item))
		}
	})

	want := []string{
		"Rust ownership explained",
		"Cute cat compilation",
		"Programming in Go",
		"",
		"Cooking SHORTS",
	}
	if strings.Join(titles, "|") != strings.Join(want, "|") {
		t.Errorf("unexpected titles:\n got: %q\nwant: %q", titles, want)
	}
}

// TestScanClassify tests the classify path.
func TestScanClassify(t *testing.T) {
	t.Parallel()

	t.Run("marks irrelevant items", func(t *testing.T) {
		t.Parallel()

		doc := parseFeed(t)
		co := newCoordinator(t, doc)

		result := co.Scan(keyword.Extract("learn rust programming"), true)

		if result.Mode != model.ModeClassify {
			t.Errorf("expected classify mode, got %s", result.Mode)
		}
		if got := markedIDs(doc); got != "b,e" {
			t.Errorf("expected b,e marked, got %q", got)
		}
		if badgeCount(doc) != 2 {
			t.Errorf("expected 2 badges, got %d", badgeCount(doc))
		}
		if result.Examined != 5 || result.Relevant != 2 || result.Irrelevant != 2 || result.Skipped != 1 {
			t.Errorf("unexpected counts: %s", result.Summary())
		}
		if result.Marked != 2 || result.Cleared != 0 {
			t.Errorf("unexpected changes: %s", result.Summary())
		}
		if result.Items[0].Keyword != "rust" {
			t.Errorf("expected rust to match first item, got %q", result.Items[0].Keyword)
		}
		if result.Location != "https://www.youtube.com/" || result.Source != "test" {
			t.Errorf("unexpected result metadata: %+v", result)
		}
	})

	t.Run("rescan is idempotent", func(t *testing.T) {
		t.Parallel()

		doc := parseFeed(t)
		co := newCoordinator(t, doc)
		kws := keyword.Extract("rust")

		co.Scan(kws, true)
		first := doc.String()
		second := co.Scan(kws, true)

		if doc.String() != first {
			t.Error("second scan changed the document")
		}
		if second.Marked != 0 || second.Cleared != 0 {
			t.Errorf("second scan should change nothing: %s", second.Summary())
		}
	})

	t.Run("goal change re-classifies", func(t *testing.T) {
		t.Parallel()

		doc := parseFeed(t)
		co := newCoordinator(t, doc)

		co.Scan(keyword.Extract("rust"), true)
		result := co.Scan(keyword.Extract("cat"), true)

		if got := markedIDs(doc); got != "a,c,e" {
			t.Errorf("expected a,c,e marked, got %q", got)
		}
		if result.Marked != 2 || result.Cleared != 1 {
			t.Errorf("unexpected changes: %s", result.Summary())
		}
		if badgeCount(doc) != 3 {
			t.Errorf("expected 3 badges, got %d", badgeCount(doc))
		}
	})

	t.Run("skipped item keeps prior annotation", func(t *testing.T) {
		t.Parallel()

		doc := parseFeed(t)
		co := newCoordinator(t, doc)
		doc.Update(func(root *html.Node) {
			annotate.New().MarkIrrelevant(dom.MustCompile("#d").First(root))
		})

		co.Scan(keyword.Extract("rust"), true)
		if !strings.Contains(markedIDs(doc), "d") {
			t.Error("item without a title should keep its annotation")
		}
	})
}

// TestScanClear tests the disabled and goal-less paths.
func TestScanClear(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		keywords keyword.Set
		enabled  bool
	}{
		{name: "disabled", keywords: keyword.Extract("rust"), enabled: false},
		{name: "empty goal", keywords: keyword.Extract(""), enabled: true},
		{name: "stop words only", keywords: keyword.Extract("what is this"), enabled: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := parseFeed(t)
			co := newCoordinator(t, doc)
			original := doc.String()

			co.Scan(keyword.Extract("rust"), true)
			if markedIDs(doc) == "" {
				t.Fatal("setup scan should mark items")
			}

			result := co.Scan(tt.keywords, tt.enabled)
			if result.Mode != model.ModeClear {
				t.Errorf("expected clear mode, got %s", result.Mode)
			}
			if got := markedIDs(doc); got != "" {
				t.Errorf("expected no marked items, got %q", got)
			}
			if badgeCount(doc) != 0 {
				t.Errorf("expected no badges, got %d", badgeCount(doc))
			}
			if result.Cleared != 3 || result.Examined != 3 {
				t.Errorf("unexpected counts: %s", result.Summary())
			}
			if doc.String() != original {
				t.Error("clear should restore the original markup")
			}
		})
	}

	t.Run("clears items no longer matching selectors", func(t *testing.T) {
		t.Parallel()

		doc, err := dom.ParseString(`<div id="x" data-focusfeed-dimmed style="opacity: 0.35; filter: grayscale(80%);"><div data-focusfeed-badge>Off goal</div></div>`)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		co := newCoordinator(t, doc)

		result := co.Scan(nil, false)
		if result.Cleared != 1 || markedIDs(doc) != "" || badgeCount(doc) != 0 {
			t.Errorf("expected stray marked element to be cleared: %s", result.Summary())
		}
	})
}

// TestScanSnapshot tests scanning with a state snapshot.
func TestScanSnapshot(t *testing.T) {
	t.Parallel()

	doc := parseFeed(t)
	co := newCoordinator(t, doc)

	snap := state.State{Goal: "rust", Enabled: true}.Snapshot()
	result := co.ScanSnapshot(snap)
	if result.Goal != "rust" || !result.Enabled {
		t.Errorf("expected snapshot recorded in result, got %+v", result)
	}
	if strings.Join(result.Keywords, ",") != "rust" {
		t.Errorf("unexpected keywords %v", result.Keywords)
	}
}

const nestedFeed = `<html><body><div id="contents">
  <ytd-rich-item-renderer id="outer">
    <a id="video-title">Rust ownership</a>
    <ytd-video-renderer id="inner"><ytd-thumbnail></ytd-thumbnail><a id="video-title">Cute cats</a></ytd-video-renderer>
  </ytd-rich-item-renderer>
</div></body></html>`

// TestScanNestedItems tests items whose selectors also match inside them.
func TestScanNestedItems(t *testing.T) {
	t.Parallel()

	t.Run("outer item owns its subtree", func(t *testing.T) {
		t.Parallel()

		doc, err := dom.ParseString(nestedFeed)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		co := newCoordinator(t, doc)

		for pass := range 2 {
			result := co.Scan(keyword.Extract("rust"), true)
			if result.Examined != 1 || result.Relevant != 1 {
				t.Errorf("pass %d: unexpected counts: %s", pass, result.Summary())
			}
			if got := markedIDs(doc); got != "" || badgeCount(doc) != 0 {
				t.Errorf("pass %d: expected nothing marked, got %q with %d badges", pass, got, badgeCount(doc))
			}
		}
	})

	t.Run("marked outer keeps exactly one badge", func(t *testing.T) {
		t.Parallel()

		doc, err := dom.ParseString(nestedFeed)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		co := newCoordinator(t, doc)

		for pass := range 2 {
			co.Scan(keyword.Extract("cooking"), true)
			if got := markedIDs(doc); got != "outer" || badgeCount(doc) != 1 {
				t.Errorf("pass %d: expected outer with one badge, got %q with %d badges", pass, got, badgeCount(doc))
			}
		}
	})

	t.Run("stale nested mark is cleared", func(t *testing.T) {
		t.Parallel()

		doc, err := dom.ParseString(nestedFeed)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		co := newCoordinator(t, doc)
		doc.Update(func(root *html.Node) {
			inner := dom.MustCompile("#inner").First(root)
			annotate.New().MarkIrrelevant(inner)
		})

		result := co.Scan(keyword.Extract("rust"), true)
		if got := markedIDs(doc); got != "" || badgeCount(doc) != 0 {
			t.Errorf("expected stale mark cleared, got %q with %d badges", got, badgeCount(doc))
		}
		if result.Cleared != 1 {
			t.Errorf("expected one cleared item, got %s", result.Summary())
		}
	})

	t.Run("marked item missing its badge is repaired", func(t *testing.T) {
		t.Parallel()

		doc, err := dom.ParseString(nestedFeed)
		if err != nil {
			t.Fatalf("failed to parse: %v", err)
		}
		co := newCoordinator(t, doc)
		co.Scan(keyword.Extract("cooking"), true)
		doc.Update(func(root *html.Node) {
			for _, b := range annotate.Badges(root) {
				dom.Detach(b)
			}
		})

		result := co.Scan(keyword.Extract("cooking"), true)
		if badgeCount(doc) != 1 || result.Marked != 1 {
			t.Errorf("expected the badge restored, got %d badges: %s", badgeCount(doc), result.Summary())
		}
	})
}

// TestExtractTitleOwnAttribute tests a title selector that matches the item.
func TestExtractTitleOwnAttribute(t *testing.T) {
	t.Parallel()

	doc, err := dom.ParseString(`<html><body>
<ytd-video-renderer id="own" title="Cute cats"><span>Rust channel</span></ytd-video-renderer>
<ytd-video-renderer id="nested"><span>Rust channel</span><a title="Rust basics">  </a></ytd-video-renderer>
<ytd-video-renderer id="none"><span>Rust channel</span></ytd-video-renderer>
</body></html>`)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	co, err := New(doc, dom.Selectors{dom.MustCompile("ytd-video-renderer")}, dom.Selectors{dom.MustCompile("[title]")})
	if err != nil {
		t.Fatalf("failed to create coordinator: %v", err)
	}

	var titles []string
	doc.Update(func(root *html.Node) {
		for _, item := range co.Enumerate(root) {
			titles = append(titles, co.ExtractTitle(item))
		}
	})
	want := []string{"Cute cats", "Rust basics", ""}
	if strings.Join(titles, "|") != strings.Join(want, "|") {
		t.Errorf("unexpected titles:\n got: %q\nwant: %q", titles, want)
	}
}
