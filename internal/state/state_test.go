package state

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
)

// TestDefault tests the state in effect before any store answer.
func TestDefault(t *testing.T) {
	t.Parallel()

	s := Default()
	if s.Goal != "" {
		t.Errorf("expected empty goal, got %q", s.Goal)
	}
	if !s.Enabled {
		t.Error("expected enabled by default")
	}
	if s.Snapshot().Filtering() {
		t.Error("default state should not filter")
	}
}

// TestSnapshot tests snapshot derivation.
func TestSnapshot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		state     State
		keywords  string
		filtering bool
	}{
		{name: "goal and enabled", state: State{Goal: "learn rust programming", Enabled: true}, keywords: "learn,programming,rust", filtering: true},
		{name: "disabled", state: State{Goal: "rust", Enabled: false}, keywords: "rust", filtering: false},
		{name: "no goal", state: State{Goal: "", Enabled: true}, keywords: "", filtering: false},
		{name: "stop words only", state: State{Goal: "this and that", Enabled: true}, keywords: "", filtering: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			snap := tt.state.Snapshot()
			if snap.Goal != tt.state.Goal || snap.Enabled != tt.state.Enabled {
				t.Errorf("snapshot did not copy state: %+v", snap)
			}
			if got := snap.Keywords.String(); got != tt.keywords {
				t.Errorf("expected keywords %q, got %q", tt.keywords, got)
			}
			if snap.Filtering() != tt.filtering {
				t.Errorf("expected filtering=%v", tt.filtering)
			}
		})
	}

	t.Run("snapshot is independent of later changes", func(t *testing.T) {
		t.Parallel()

		s := State{Goal: "rust", Enabled: true}
		snap := s.Snapshot()
		s, _ = s.Apply(GoalUpdated("guitar"))
		if snap.Goal != "rust" || !snap.Keywords.Contains("rust") {
			t.Errorf("snapshot changed after state update: %+v", snap)
		}
	})
}

// TestApply tests applying push notifications.
func TestApply(t *testing.T) {
	t.Parallel()

	s := Default()

	s, err := s.Apply(GoalUpdated("rust"))
	if err != nil || s.Goal != "rust" {
		t.Fatalf("goal update failed: %+v %v", s, err)
	}

	s, err = s.Apply(ToggleChanged(false))
	if err != nil || s.Enabled || s.Goal != "rust" {
		t.Fatalf("toggle failed: %+v %v", s, err)
	}

	_, err = s.Apply(Message{Type: "SOMETHING_ELSE"})
	if !errors.Is(err, ErrUnknownMessage) {
		t.Errorf("expected ErrUnknownMessage, got %v", err)
	}
}

// TestMessageJSON tests the wire form of protocol messages.
func TestMessageJSON(t *testing.T) {
	t.Parallel()

	t.Run("encodes payload by type", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			msg  Message
			want string
		}{
			{msg: GoalUpdated("learn rust"), want: `{"type":"GOAL_UPDATED","goal":"learn rust"}`},
			{msg: GoalUpdated(""), want: `{"type":"GOAL_UPDATED","goal":""}`},
			{msg: ToggleChanged(false), want: `{"type":"TOGGLE_CHANGED","isEnabled":false}`},
			{msg: Message{Type: TypeGetState}, want: `{"type":"GET_STATE"}`},
		}
		for _, tt := range tests {
			got, err := json.Marshal(tt.msg)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		}
	})

	t.Run("rejects unknown type on encode", func(t *testing.T) {
		t.Parallel()

		if _, err := json.Marshal(Message{Type: "NOPE"}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("decodes and validates", func(t *testing.T) {
		t.Parallel()

		var m Message
		if err := json.Unmarshal([]byte(`{"type":"TOGGLE_CHANGED","isEnabled":true}`), &m); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if m.Type != TypeToggleChanged || !m.IsEnabled {
			t.Errorf("unexpected message %+v", m)
		}

		err := json.Unmarshal([]byte(`{"type":"GOAL_UPDATED"}`), &m)
		if !errors.Is(err, ErrMalformedMessage) {
			t.Errorf("expected ErrMalformedMessage, got %v", err)
		}
		err = json.Unmarshal([]byte(`{"type":"TOGGLE_CHANGED"}`), &m)
		if !errors.Is(err, ErrMalformedMessage) {
			t.Errorf("expected ErrMalformedMessage, got %v", err)
		}
		err = json.Unmarshal([]byte(`{"type":"HELLO"}`), &m)
		if !errors.Is(err, ErrUnknownMessage) {
			t.Errorf("expected ErrUnknownMessage, got %v", err)
		}
	})

	t.Run("decodes state response", func(t *testing.T) {
		t.Parallel()

		s, err := DecodeState([]byte(`{"focusGoal":"rust","isEnabled":false}`))
		if err != nil || s.Goal != "rust" || s.Enabled {
			t.Errorf("unexpected state %+v %v", s, err)
		}

		s, err = DecodeState([]byte(`{}`))
		if err != nil || s != Default() {
			t.Errorf("expected defaults for empty response, got %+v %v", s, err)
		}

		if _, err := DecodeState([]byte(`not json`)); !errors.Is(err, ErrMalformedMessage) {
			t.Errorf("expected ErrMalformedMessage, got %v", err)
		}
	})

	t.Run("state encodes with protocol field names", func(t *testing.T) {
		t.Parallel()

		got, err := json.Marshal(State{Goal: "rust", Enabled: true})
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(got) != `{"focusGoal":"rust","isEnabled":true}` {
			t.Errorf("unexpected encoding %s", got)
		}
	})
}

// TestBroadcaster tests subscriber fan-out.
func TestBroadcaster(t *testing.T) {
	t.Parallel()

	var b Broadcaster
	var mu sync.Mutex
	var got []Message

	cancelA := b.Subscribe(func(m Message) {
		mu.Lock()
		got = append(got, m)
		mu.Unlock()
	})
	cancelB := b.Subscribe(func(m Message) {
		mu.Lock()
		got = append(got, m)
		mu.Unlock()
	})
	if b.Len() != 2 {
		t.Fatalf("expected 2 subscribers, got %d", b.Len())
	}

	b.Broadcast(GoalUpdated("rust"))
	cancelA()
	b.Broadcast(ToggleChanged(false))
	cancelB()
	cancelB()
	b.Broadcast(GoalUpdated("ignored"))

	if len(got) != 3 {
		t.Errorf("expected 3 deliveries, got %d: %+v", len(got), got)
	}
	if b.Len() != 0 {
		t.Errorf("expected no subscribers, got %d", b.Len())
	}
}

type fakeSource struct {
	state State
	err   error
	bc    Broadcaster
}

func (f *fakeSource) FetchState(context.Context) (State, error) {
	return f.state, f.err
}

func (f *fakeSource) Subscribe(fn func(Message)) func() {
	return f.bc.Subscribe(fn)
}

// TestRelay tests relaying piped messages.
func TestRelay(t *testing.T) {
	t.Parallel()

	t.Run("without backing state is unavailable", func(t *testing.T) {
		t.Parallel()

		r := NewRelay()
		s, err := r.FetchState(context.Background())
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
		if s != Default() {
			t.Errorf("expected defaults, got %+v", s)
		}
	})

	t.Run("backing answers and forwards", func(t *testing.T) {
		t.Parallel()

		backing := &fakeSource{state: State{Goal: "rust", Enabled: true}}
		r := NewRelay(WithBacking(backing))
		defer r.Close()

		s, err := r.FetchState(context.Background())
		if err != nil || s.Goal != "rust" {
			t.Errorf("unexpected state %+v %v", s, err)
		}

		var got []Message
		cancel := r.Subscribe(func(m Message) { got = append(got, m) })
		defer cancel()

		backing.bc.Broadcast(ToggleChanged(false))
		if len(got) != 1 || got[0].Type != TypeToggleChanged {
			t.Errorf("expected forwarded toggle, got %+v", got)
		}

		r.Close()
		backing.bc.Broadcast(ToggleChanged(true))
		if len(got) != 1 {
			t.Errorf("expected no forwarding after close, got %+v", got)
		}
	})

	t.Run("pump publishes valid lines", func(t *testing.T) {
		t.Parallel()

		r := NewRelay()
		var got []Message
		cancel := r.Subscribe(func(m Message) { got = append(got, m) })
		defer cancel()

		input := strings.Join([]string{
			`{"type":"GOAL_UPDATED","goal":"rust"}`,
			``,
			`garbage`,
			`{"type":"GET_STATE"}`,
			`{"type":"UNKNOWN"}`,
			`{"type":"TOGGLE_CHANGED","isEnabled":false}`,
		}, "\n")

		if err := r.Pump(context.Background(), strings.NewReader(input)); err != nil {
			t.Fatalf("pump failed: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 messages, got %d: %+v", len(got), got)
		}
		if got[0] != GoalUpdated("rust") || got[1] != ToggleChanged(false) {
			t.Errorf("unexpected messages %+v", got)
		}
	})

	t.Run("pump stops on cancelled context", func(t *testing.T) {
		t.Parallel()

		r := NewRelay()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := r.Pump(ctx, strings.NewReader(`{"type":"GOAL_UPDATED","goal":"rust"}`))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("holds latest of each type until first subscriber", func(t *testing.T) {
		t.Parallel()

		r := NewRelay()
		for _, m := range []Message{GoalUpdated("go"), ToggleChanged(false), GoalUpdated("rust")} {
			if err := r.Publish(m); err != nil {
				t.Fatalf("publish failed: %v", err)
			}
		}

		var got []Message
		cancel := r.Subscribe(func(m Message) { got = append(got, m) })
		defer cancel()
		want := []Message{ToggleChanged(false), GoalUpdated("rust")}
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Fatalf("expected %+v, got %+v", want, got)
		}

		var second []Message
		cancel2 := r.Subscribe(func(m Message) { second = append(second, m) })
		defer cancel2()
		if len(second) != 0 {
			t.Errorf("expected held messages delivered once, got %+v", second)
		}
	})

	t.Run("publish rejects unknown types", func(t *testing.T) {
		t.Parallel()

		if err := NewRelay().Publish(Message{Type: "X"}); !errors.Is(err, ErrUnknownMessage) {
			t.Errorf("expected ErrUnknownMessage, got %v", err)
		}
	})
}
