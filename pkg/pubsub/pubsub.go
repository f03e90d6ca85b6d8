// Package pubsub provides an in-process publish/subscribe broker with
// topic-keyed channels and at-most-once delivery. There is no replay buffer:
// a message published with no subscribers, or to a subscriber whose channel
// is full, is dropped. Durable state belongs to the database, not the broker.
package pubsub

import (
	"log/slog"
	"sync"

	"github.com/rmoura-dev/provisor/pkg/lifecycle"
)

// Event is a published message tagged with its topic.
type Event struct {
	Topic   string `json:"topic"`
	Kind    string `json:"kind"`
	Payload any    `json:"payload"`
}

// Broker fans events out to subscribers keyed by topic.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[chan Event]struct{}
	buffer int
	closed bool
	logger *slog.Logger
}

// New creates a Broker whose subscriber channels hold up to buffer events.
func New(buffer int, logger *slog.Logger) *Broker {
	if buffer < 1 {
		buffer = 8
	}
	return &Broker{
		subs:   make(map[string]map[chan Event]struct{}),
		buffer: buffer,
		logger: logger.With("system", "pubsub"),
	}
}

// Subscribe registers a new subscriber for topic. The returned cancel
// function removes the subscription and closes the channel; it is safe to
// call more than once.
func (b *Broker) Subscribe(topic string) (<-chan Event, func()) {
	ch := make(chan Event, b.buffer)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch, func() {}
	}

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[chan Event]struct{})
	}
	b.subs[topic][ch] = struct{}{}

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			if set, ok := b.subs[topic]; ok {
				delete(set, ch)
				if len(set) == 0 {
					delete(b.subs, topic)
				}
				close(ch)
			}
		})
	}

	return ch, cancel
}

// Publish delivers the event to every current subscriber of topic without
// blocking. Subscribers whose channel is full miss the event.
func (b *Broker) Publish(topic, kind string, payload any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	event := Event{Topic: topic, Kind: kind, Payload: payload}
	for ch := range b.subs[topic] {
		select {
		case ch <- event:
		default:
			b.logger.Warn("subscriber channel full, dropping event", "topic", topic, "kind", kind)
		}
	}
}

// Close shuts the broker down, closing all subscriber channels. Subsequent
// publishes and subscribes are no-ops.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for topic, set := range b.subs {
		for ch := range set {
			close(ch)
		}
		delete(b.subs, topic)
	}
}

// Start registers a shutdown hook that closes the broker.
func (b *Broker) Start(lc *lifecycle.Coordinator) error {
	lc.OnShutdown(func() {
		<-lc.Context().Done()
		b.logger.Info("closing broker")
		b.Close()
	})
	return nil
}
