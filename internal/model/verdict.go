package model

import "fmt"

// Verdict is the classification outcome for one content item.
type Verdict int

const (
	// VerdictRelevant means the item's title matches the goal, or there is no
	// usable goal.
	VerdictRelevant Verdict = iota

	// VerdictIrrelevant means no goal keyword occurs in the item's title.
	VerdictIrrelevant

	// VerdictSkipped means no title could be extracted; the item keeps
	// whatever annotation it already had.
	VerdictSkipped
)

// String returns the lower-case name of the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictRelevant:
		return "relevant"
	case VerdictIrrelevant:
		return "irrelevant"
	case VerdictSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText encodes the verdict by name.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a verdict name.
func (v *Verdict) UnmarshalText(text []byte) error {
	switch string(text) {
	case "relevant":
		*v = VerdictRelevant
	case "irrelevant":
		*v = VerdictIrrelevant
	case "skipped":
		*v = VerdictSkipped
	default:
		return fmt.Errorf("unknown verdict %q", text)
	}
	return nil
}

// ScanMode tells how a scan pass treated the document.
type ScanMode int

const (
	// ModeClassify classifies every item against the goal keywords.
	ModeClassify ScanMode = iota

	// ModeClear removes every annotation without classifying. It runs when
	// the engine is disabled or there is no usable goal.
	ModeClear
)

// String returns the lower-case name of the mode.
func (m ScanMode) String() string {
	switch m {
	case ModeClassify:
		return "classify"
	case ModeClear:
		return "clear"
	default:
		return "unknown"
	}
}

// MarshalText encodes the mode by name.
func (m ScanMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name.
func (m *ScanMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "classify":
		*m = ModeClassify
	case "clear":
		*m = ModeClear
	default:
		return fmt.Errorf("unknown scan mode %q", text)
	}
	return nil
}
