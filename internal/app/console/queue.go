package console

import (
	"sync"
	"sync/atomic"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/touchdeck/internal/app/transport"
)

// DefaultQueueSize is the event queue capacity.
const DefaultQueueSize = 64

// Queue marshals events from any goroutine into the console task.
// It implements transport.Completions for the audio service and the catalog.
type Queue struct {
	ch      chan Event
	done    chan struct{}
	once    sync.Once
	dropped atomic.Uint64
}

// NewQueue creates a queue with the given capacity.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		ch:   make(chan Event, size),
		done: make(chan struct{}),
	}
}

// C returns the receive side of the queue.
func (q *Queue) C() <-chan Event {
	return q.ch
}

// Post enqueues ev without blocking. Returns false when the queue is full
// or closed and the event was dropped.
func (q *Queue) Post(ev Event) bool {
	select {
	case <-q.done:
		return false
	default:
	}

	select {
	case q.ch <- ev:
		return true
	default:
		n := q.dropped.Add(1)
		zlog.Warn().Msgf("console: queue full, dropped %s (total=%d)", Describe(ev), n)
		return false
	}
}

// Deliver enqueues ev, waiting for space. Completions that the transport
// depends on use it so they are never dropped. Returns false after Close.
func (q *Queue) Deliver(ev Event) bool {
	select {
	case q.ch <- ev:
		return true
	case <-q.done:
		return false
	}
}

// Dropped returns the number of dropped events.
func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

// Close releases producers blocked in Deliver.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.done) })
}

// LoadCompleted implements transport.Completions.
func (q *Queue) LoadCompleted(res transport.LoadResult) {
	q.Deliver(LoadCompletedEvent{Result: res})
}

// AdjacentResolved implements transport.Completions.
func (q *Queue) AdjacentResolved(res transport.AdjacentResult) {
	q.Deliver(AdjacentResolvedEvent{Result: res})
}

// PositionReported implements transport.Completions. A dropped report is
// superseded by the next one.
func (q *Queue) PositionReported(generation uint64, positionSeconds int) {
	q.Post(ProgressEvent{Generation: generation, Seconds: positionSeconds})
}

// TrackFinished implements transport.Completions.
func (q *Queue) TrackFinished(generation uint64) {
	q.Deliver(TrackFinishedEvent{Generation: generation})
}
