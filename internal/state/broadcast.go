package state

import (
	"sync"

	"github.com/google/uuid"
)

// Broadcaster fans notifications out to subscribers. The zero value is ready
// to use.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[uuid.UUID]func(Message)
}

// Subscribe registers fn and returns a func that unregisters it.
func (b *Broadcaster) Subscribe(fn func(Message)) (cancel func()) {
	id := uuid.New()

	b.mu.Lock()
	if b.subs == nil {
		b.subs = make(map[uuid.UUID]func(Message))
	}
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Broadcast calls every subscriber with m. Subscribers run on the caller's
// goroutine, outside the broadcaster's lock.
func (b *Broadcaster) Broadcast(m Message) {
	b.mu.Lock()
	fns := make([]func(Message), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(m)
	}
}

// Len returns the number of subscribers.
func (b *Broadcaster) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
