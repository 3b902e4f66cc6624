package model

import (
	"fmt"
	"time"
)

// ItemResult records what one scan pass decided for one content item.
type ItemResult struct {
	// Index is the item's position in enumeration order.
	Index int `json:"index"`

	// Title is the extracted display title; empty when skipped.
	Title string `json:"title,omitempty"`

	// Verdict is the classification outcome.
	Verdict Verdict `json:"verdict"`

	// Keyword is the goal keyword that made the item relevant, if any.
	Keyword string `json:"keyword,omitempty"`

	// Changed is true when the annotation was added or removed.
	Changed bool `json:"changed"`
}

// ScanResult summarizes one scan pass over a document.
// Results are informational only and never persisted.
type ScanResult struct {
	// Source names the scanned document (a file path or engine ID).
	Source string `json:"source,omitempty"`

	// Location is the document address at scan time.
	Location string `json:"location,omitempty"`

	// Goal is the goal text of the snapshot the scan ran with.
	Goal string `json:"goal"`

	// Keywords are the keywords derived from Goal, in lexical order.
	Keywords []string `json:"keywords"`

	// Enabled is the enabled flag of the snapshot the scan ran with.
	Enabled bool `json:"enabled"`

	// Mode tells whether items were classified or only cleared.
	Mode ScanMode `json:"mode"`

	// StartedAt is when the pass began.
	StartedAt time.Time `json:"startedAt"`

	// Duration is how long the pass held the document.
	Duration time.Duration `json:"duration"`

	// Examined counts items enumerated in classify mode, or annotated items
	// found in clear mode.
	Examined int `json:"examined"`

	// Relevant, Irrelevant and Skipped count verdicts in classify mode.
	Relevant   int `json:"relevant"`
	Irrelevant int `json:"irrelevant"`
	Skipped    int `json:"skipped"`

	// Marked counts items that gained the annotation during the pass.
	Marked int `json:"marked"`

	// Cleared counts items that lost the annotation during the pass.
	Cleared int `json:"cleared"`

	// Items holds one row per examined item, in enumeration order.
	Items []ItemResult `json:"items"`
}

// Record appends an item row and updates the counters.
func (r *ScanResult) Record(item ItemResult) {
	item.Index = len(r.Items)
	r.Items = append(r.Items, item)
	r.Examined++

	switch item.Verdict {
	case VerdictRelevant:
		r.Relevant++
		if item.Changed {
			r.Cleared++
		}
	case VerdictIrrelevant:
		r.Irrelevant++
		if item.Changed {
			r.Marked++
		}
	case VerdictSkipped:
		r.Skipped++
	}
}

// Summary returns a one-line description of the pass.
func (r *ScanResult) Summary() string {
	if r.Mode == ModeClear {
		return fmt.Sprintf("cleared %d of %d annotated items", r.Cleared, r.Examined)
	}
	return fmt.Sprintf("examined %d items: %d relevant, %d irrelevant, %d skipped (%d marked, %d cleared)",
		r.Examined, r.Relevant, r.Irrelevant, r.Skipped, r.Marked, r.Cleared)
}
