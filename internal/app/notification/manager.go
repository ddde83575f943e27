// Package notification provides the notification manager for broadcasting console events.
package notification

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/touchdeck/internal/app/transport"
	"github.com/osa030/touchdeck/internal/domain/screen"
)

// Kind represents a notification kind.
type Kind int

const (
	KindStateChanged Kind = iota
	KindTrackChanged
	KindPositionChanged
	KindLoadFailed
	KindPreferencesChanged
	KindScreenChanged
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindStateChanged:
		return "state_changed"
	case KindTrackChanged:
		return "track_changed"
	case KindPositionChanged:
		return "position_changed"
	case KindLoadFailed:
		return "load_failed"
	case KindPreferencesChanged:
		return "preferences_changed"
	case KindScreenChanged:
		return "screen_changed"
	default:
		return "unknown"
	}
}

// FromTransport maps a transport event type to a notification kind.
func FromTransport(t transport.EventType) Kind {
	switch t {
	case transport.EventTrackChanged:
		return KindTrackChanged
	case transport.EventPositionChanged:
		return KindPositionChanged
	case transport.EventLoadFailed:
		return KindLoadFailed
	case transport.EventPreferencesChanged:
		return KindPreferencesChanged
	default:
		return KindStateChanged
	}
}

// Notification is a broadcast event.
type Notification struct {
	SequenceNo uint64
	Kind       Kind
	Transport  transport.Snapshot
	Screen     screen.Screen
	At         time.Time
}

// Stream represents a notification stream for a subscriber.
type Stream interface {
	Send(Notification) error
}

// StreamFunc adapts a function to Stream.
type StreamFunc func(Notification) error

// Send calls f(n).
func (f StreamFunc) Send(n Notification) error {
	return f(n)
}

// DefaultBuffer is the per-subscriber queue length.
const DefaultBuffer = 16

// subscription represents a subscriber's subscription.
type subscription struct {
	id      string
	stream  Stream
	ch      chan Notification
	dropped atomic.Uint64
	done    chan struct{}
}

// Manager manages notification subscriptions and broadcasting.
// Broadcast never blocks; a slow subscriber loses notifications instead.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription
	sequenceNo    uint64
	sequenceNoMu  sync.Mutex
	wg            sync.WaitGroup
}

// NewManager creates a new notification manager.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*subscription),
	}
}

// Subscribe adds a new subscription and returns the subscription ID.
// A non-positive buffer uses DefaultBuffer.
func (m *Manager) Subscribe(stream Stream, buffer int) string {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	sub := &subscription{
		id:     id,
		stream: stream,
		ch:     make(chan Notification, buffer),
		done:   make(chan struct{}),
	}
	m.subscriptions[id] = sub

	m.wg.Add(1)
	go m.deliver(sub)
	return id
}

func (m *Manager) deliver(sub *subscription) {
	defer m.wg.Done()
	defer close(sub.done)

	for n := range sub.ch {
		if err := sub.stream.Send(n); err != nil {
			zlog.Warn().Msgf("notification: send failed: subscription=%s seq=%d: %v", sub.id, n.SequenceNo, err)
		}
	}
}

// NextSequenceNo returns the next sequence number and increments the counter.
func (m *Manager) NextSequenceNo() uint64 {
	m.sequenceNoMu.Lock()
	defer m.sequenceNoMu.Unlock()
	m.sequenceNo++
	return m.sequenceNo
}

// Unsubscribe removes a subscription. Queued notifications are still delivered.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	sub, ok := m.subscriptions[subscriptionID]
	delete(m.subscriptions, subscriptionID)
	m.mu.Unlock()

	if ok {
		close(sub.ch)
	}
}

// Broadcast stamps n with the next sequence number and queues it for every subscriber.
func (m *Manager) Broadcast(n Notification) Notification {
	n.SequenceNo = m.NextSequenceNo()
	if n.At.IsZero() {
		n.At = time.Now()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscriptions {
		select {
		case sub.ch <- n:
		default:
			if sub.dropped.Add(1) == 1 {
				zlog.Warn().Msgf("notification: subscriber %s is falling behind, dropping", sub.id)
			}
		}
	}
	return n
}

// Dropped returns the number of notifications dropped for a subscriber.
func (m *Manager) Dropped(subscriptionID string) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sub, ok := m.subscriptions[subscriptionID]; ok {
		return sub.dropped.Load()
	}
	return 0
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions and waits for queued notifications to be delivered.
func (m *Manager) Close() {
	m.mu.Lock()
	subs := m.subscriptions
	m.subscriptions = make(map[string]*subscription)
	m.mu.Unlock()

	for _, sub := range subs {
		close(sub.ch)
	}
	m.wg.Wait()
}
