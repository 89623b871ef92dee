// Package event is a small synchronous dispatcher. The state containers fire
// change events on it; views listen to re-render.
package event

import "sync"

// Names fired by the state containers.
const (
	CartChanged    = "cart.changed"
	SessionChanged = "session.changed"
)

// Handler is a function that receives an event payload.
type Handler func(payload interface{})

type listener struct {
	id uint64
	fn Handler
}

// Bus holds listeners per event name. The zero value is not usable; call NewBus.
type Bus struct {
	mu       sync.RWMutex
	next     uint64
	handlers map[string][]listener
}

func NewBus() *Bus {
	return &Bus{handlers: map[string][]listener{}}
}

// Listen registers fn for event and returns a func that removes it again.
func (b *Bus) Listen(event string, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.next++
	id := b.next
	b.handlers[event] = append(b.handlers[event], listener{id: id, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		ls := b.handlers[event]
		for i, l := range ls {
			if l.id == id {
				b.handlers[event] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}
}

// Fire dispatches synchronously, in registration order. A nil Bus is a no-op.
func (b *Bus) Fire(event string, payload interface{}) {
	if b == nil {
		return
	}
	b.mu.RLock()
	ls := make([]listener, len(b.handlers[event]))
	copy(ls, b.handlers[event])
	b.mu.RUnlock()

	for _, l := range ls {
		l.fn(payload)
	}
}
