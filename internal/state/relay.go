package state

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Relay is a Source fed by messages relayed from elsewhere, typically JSON
// lines piped in by a host. GET_STATE is answered by an optional backing
// Source; without one the relay reports ErrUnavailable.
type Relay struct {
	backing Source
	logger  *slog.Logger
	bc      Broadcaster

	// mu guards held.
	mu sync.Mutex
	// held keeps the latest notification of each type published while
	// nobody was subscribed; it is delivered to the first subscriber.
	held []Message

	// stopBacking unsubscribes from the backing source.
	stopBacking func()
}

// RelayOption configures a Relay.
type RelayOption func(*Relay)

// WithBacking sets the Source that answers GET_STATE. Its push notifications
// are forwarded to the relay's subscribers as well.
func WithBacking(src Source) RelayOption {
	return func(r *Relay) {
		r.backing = src
	}
}

// WithRelayLogger sets the logger used for malformed input.
func WithRelayLogger(logger *slog.Logger) RelayOption {
	return func(r *Relay) {
		r.logger = logger
	}
}

// NewRelay creates a Relay.
func NewRelay(opts ...RelayOption) *Relay {
	r := &Relay{}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.backing != nil {
		r.stopBacking = r.backing.Subscribe(r.relay)
	}
	return r
}

// FetchState answers GET_STATE from the backing source.
func (r *Relay) FetchState(ctx context.Context) (State, error) {
	if r.backing == nil {
		return Default(), ErrUnavailable
	}
	return r.backing.FetchState(ctx)
}

// Subscribe registers fn for relayed notifications. Notifications held
// since the relay was created are delivered to fn before Subscribe returns.
func (r *Relay) Subscribe(fn func(Message)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	cancel := r.bc.Subscribe(fn)
	held := r.held
	r.held = nil
	for _, m := range held {
		fn(m)
	}
	return cancel
}

// relay broadcasts m, or holds it when there are no subscribers yet.
func (r *Relay) relay(m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bc.Len() > 0 {
		r.bc.Broadcast(m)
		return
	}
	for i, h := range r.held {
		if h.Type == m.Type {
			r.held = append(r.held[:i], r.held[i+1:]...)
			break
		}
	}
	r.held = append(r.held, m)
}

// Publish relays one notification. GET_STATE requests are ignored.
func (r *Relay) Publish(m Message) error {
	switch m.Type {
	case TypeGoalUpdated, TypeToggleChanged:
		r.relay(m)
		return nil
	case TypeGetState:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, m.Type)
	}
}

// Pump reads JSON-lines messages from src and publishes each one until src
// is exhausted or ctx is done. Blank lines are ignored; malformed lines are
// logged and skipped.
func (r *Relay) Pump(ctx context.Context, src io.Reader) error {
	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var m Message
		if err := json.Unmarshal(line, &m); err != nil {
			r.logger.Warn("ignoring malformed message", "error", err)
			continue
		}
		if err := r.Publish(m); err != nil {
			r.logger.Warn("ignoring message", "error", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read messages: %w", err)
	}
	return nil
}

// Close stops forwarding notifications from the backing source.
func (r *Relay) Close() {
	if r.stopBacking != nil {
		r.stopBacking()
		r.stopBacking = nil
	}
}
