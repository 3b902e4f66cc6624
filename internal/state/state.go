package state

import (
	"context"
	"errors"

	"github.com/nao1215/focusfeed/internal/keyword"
)

// ErrUnavailable is returned by a Source that cannot answer GET_STATE.
var ErrUnavailable = errors.New("state not available")

// State is the goal text and enabled flag.
type State struct {
	// Goal is the user's focus goal; empty means no goal is set.
	Goal string `json:"focusGoal"`

	// Enabled reports whether filtering is switched on.
	Enabled bool `json:"isEnabled"`
}

// Default returns the state in effect before anything is known:
// no goal, enabled.
func Default() State {
	return State{Goal: "", Enabled: true}
}

// Snapshot freezes s for one scan pass.
func (s State) Snapshot() Snapshot {
	return Snapshot{
		Goal:     s.Goal,
		Enabled:  s.Enabled,
		Keywords: keyword.Extract(s.Goal),
	}
}

// Snapshot is an immutable copy of State plus its derived keyword set.
type Snapshot struct {
	Goal     string
	Enabled  bool
	Keywords keyword.Set
}

// Filtering reports whether a scan with this snapshot classifies items.
// It is false when disabled or when the goal yields no keywords, in which
// case a scan only clears annotations.
func (s Snapshot) Filtering() bool {
	return s.Enabled && !s.Keywords.IsEmpty()
}

// Source is the external store as seen by the engine: a pull for the current
// state and a subscription to push notifications.
type Source interface {
	// FetchState answers GET_STATE. Implementations return an error, or
	// block until ctx is done, when the store is unavailable.
	FetchState(ctx context.Context) (State, error)

	// Subscribe registers fn for push notifications and returns a func
	// that unregisters it. fn may be called from any goroutine.
	Subscribe(fn func(Message)) (cancel func())
}
