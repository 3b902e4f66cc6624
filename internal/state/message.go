package state

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType names a protocol message.
type MessageType string

// Protocol message types.
const (
	// TypeGetState asks the store for the current state.
	TypeGetState MessageType = "GET_STATE"

	// TypeGoalUpdated notifies that the goal text changed.
	TypeGoalUpdated MessageType = "GOAL_UPDATED"

	// TypeToggleChanged notifies that the enabled flag changed.
	TypeToggleChanged MessageType = "TOGGLE_CHANGED"
)

var (
	// ErrUnknownMessage is returned for a message type outside the protocol.
	ErrUnknownMessage = errors.New("unknown message type")

	// ErrMalformedMessage is returned when a message lacks its payload.
	ErrMalformedMessage = errors.New("malformed message")
)

// Message is one protocol message. Only the field matching Type is meaningful.
type Message struct {
	Type      MessageType
	Goal      string
	IsEnabled bool
}

// GoalUpdated builds a GOAL_UPDATED notification.
func GoalUpdated(goal string) Message {
	return Message{Type: TypeGoalUpdated, Goal: goal}
}

// ToggleChanged builds a TOGGLE_CHANGED notification.
func ToggleChanged(enabled bool) Message {
	return Message{Type: TypeToggleChanged, IsEnabled: enabled}
}

// Apply returns s updated by a push notification.
func (s State) Apply(m Message) (State, error) {
	switch m.Type {
	case TypeGoalUpdated:
		s.Goal = m.Goal
	case TypeToggleChanged:
		s.Enabled = m.IsEnabled
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
	}
	return s, nil
}

// envelope is the JSON wire form of a Message.
type envelope struct {
	Type      MessageType `json:"type"`
	Goal      *string     `json:"goal,omitempty"`
	FocusGoal *string     `json:"focusGoal,omitempty"`
	IsEnabled *bool       `json:"isEnabled,omitempty"`
}

// MarshalJSON encodes m with only the payload field its type defines.
func (m Message) MarshalJSON() ([]byte, error) {
	env := envelope{Type: m.Type}
	switch m.Type {
	case TypeGoalUpdated:
		env.Goal = &m.Goal
	case TypeToggleChanged:
		env.IsEnabled = &m.IsEnabled
	case TypeGetState:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
	}
	return json.Marshal(env)
}

// UnmarshalJSON decodes a message and checks its payload is present.
func (m *Message) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}

	msg := Message{Type: env.Type}
	switch env.Type {
	case TypeGoalUpdated:
		if env.Goal == nil {
			return fmt.Errorf("%w: %s without goal", ErrMalformedMessage, env.Type)
		}
		msg.Goal = *env.Goal
	case TypeToggleChanged:
		if env.IsEnabled == nil {
			return fmt.Errorf("%w: %s without isEnabled", ErrMalformedMessage, env.Type)
		}
		msg.IsEnabled = *env.IsEnabled
	case TypeGetState:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
	}
	*m = msg
	return nil
}

// DecodeState decodes a GET_STATE response. A missing isEnabled keeps the
// default of true; a missing focusGoal means no goal.
func DecodeState(data []byte) (State, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Default(), fmt.Errorf("%w: %w", ErrMalformedMessage, err)
	}
	s := Default()
	if env.FocusGoal != nil {
		s.Goal = *env.FocusGoal
	}
	if env.IsEnabled != nil {
		s.Enabled = *env.IsEnabled
	}
	return s, nil
}
