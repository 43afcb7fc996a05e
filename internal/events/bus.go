package events

import "sync"

// Topic identifies a class of application events.
type Topic string

const (
	// TopicUpgradePrompt fires when a gated action is denied and the
	// presentation layer should offer an upgrade.
	TopicUpgradePrompt Topic = "upgrade_prompt"
	// TopicStateChanged fires after the persisted application state
	// has been written.
	TopicStateChanged Topic = "state_changed"
)

// Handler receives the event payload.
type Handler func(payload any)

// Bus is an explicitly constructed publish/subscribe hub. It is passed
// by reference to the components that need it; the application root
// owns its lifecycle.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[Topic]map[int]Handler
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Topic]map[int]Handler)}
}

// Subscribe registers a handler for a topic and returns a disposer
// that removes the subscription.
func (b *Bus) Subscribe(topic Topic, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.subs[topic][id] = h

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish delivers the payload to every current subscriber of the
// topic. Handlers run synchronously on the caller's goroutine.
func (b *Bus) Publish(topic Topic, payload any) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, h := range b.subs[topic] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(payload)
	}
}
