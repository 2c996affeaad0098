// Package eventbus is a small in-memory publish/subscribe bus. The dispatch
// paths publish invocation-completed events on it and the audit recorder
// consumes them, so writing the invocation log never blocks a call.
//
// Design:
//   - Buffered Go channel per subscriber.
//   - Publish is non-blocking: the event is dropped if a buffer is full.
//   - Subscribe returns a read-only channel; the caller owns the consumption loop.
//   - No persistence: events are fire-and-forget.
package eventbus

import "sync"

// Event is a single published message.
type Event struct {
	Topic   string
	Payload any
}

// EventBus is the interface for publishing and subscribing to topics.
type EventBus interface {
	Publish(topic string, payload any)
	Subscribe(topic string) <-chan Event
}

const subscriberBuffer = 64

// Bus is the in-memory implementation of EventBus.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Event
}

// New returns a new in-memory Bus.
func New() *Bus {
	return &Bus{subscribers: make(map[string][]chan Event)}
}

// Subscribe registers a new subscriber for topic and returns a read-only
// channel. The caller must keep draining it to avoid dropped events.
func (b *Bus) Subscribe(topic string) <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers an Event to every subscriber of topic without blocking.
func (b *Bus) Publish(topic string, payload any) {
	b.mu.RLock()
	subs := b.subscribers[topic]
	b.mu.RUnlock()

	evt := Event{Topic: topic, Payload: payload}
	for _, ch := range subs {
		select {
		case ch <- evt:
		default:
			// subscriber is behind — drop
		}
	}
}
