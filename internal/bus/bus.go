// Package bus routes domain events from the actors to their consumers
// (the event ledger and the MQTT publisher) through a bounded worker pool.
// Publishing never blocks an actor: when the queue is full the event is
// dropped with a warning.
package bus

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// EventType identifies what happened.
type EventType string

const (
	EventRelayPressed     EventType = "relay_pressed"
	EventBellRung         EventType = "bell_rung"
	EventTriggerRejected  EventType = "trigger_rejected"
	EventCallFailed       EventType = "call_failed"
	EventOnlineChanged    EventType = "online_changed"
	EventRestartRequested EventType = "restart_requested"
	EventStartup          EventType = "startup"
	EventShutdown         EventType = "shutdown"
)

// Types returns every event type, for consumers that subscribe to all of them.
func Types() []EventType {
	return []EventType{
		EventRelayPressed,
		EventBellRung,
		EventTriggerRejected,
		EventCallFailed,
		EventOnlineChanged,
		EventRestartRequested,
		EventStartup,
		EventShutdown,
	}
}

// Default worker pool configuration.
const (
	DefaultWorkerCount = 2
	DefaultQueueSize   = 64
)

// Event is a single domain event.
type Event struct {
	Type EventType
	Data map[string]any
}

// Handler processes events.
type Handler func(Event)

// work is a unit of work for the worker pool.
type work struct {
	event   Event
	handler Handler
}

// Bus fans events out to subscribed handlers via a worker pool.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler

	// workQueue is never closed: producers (actor goroutines) outlive Close,
	// which is advisory. Workers exit via the closing signal instead.
	workQueue chan work
	wg        sync.WaitGroup

	// Closing is signalled by closing this channel; selecting on a channel
	// is race-free, unlike a mutex-guarded bool.
	closing   chan struct{}
	closeOnce sync.Once
}

// New creates a bus with default worker pool settings.
func New() *Bus {
	return NewWithConfig(DefaultWorkerCount, DefaultQueueSize)
}

// NewWithConfig creates a bus with a custom worker count and queue size.
func NewWithConfig(workerCount, queueSize int) *Bus {
	b := &Bus{
		handlers:  make(map[EventType][]Handler),
		workQueue: make(chan work, queueSize),
		closing:   make(chan struct{}),
	}

	for i := 0; i < workerCount; i++ {
		b.wg.Add(1)
		go b.worker(i)
	}

	log.Debug().Int("workers", workerCount).Int("queue_size", queueSize).Msg("Event bus started")
	return b
}

func (b *Bus) worker(id int) {
	defer b.wg.Done()

	for {
		select {
		case <-b.closing:
			// Drain what is already queued, then exit.
			for {
				select {
				case w := <-b.workQueue:
					b.run(id, w)
				default:
					return
				}
			}
		case w := <-b.workQueue:
			b.run(id, w)
		}
	}
}

func (b *Bus) run(id int, w work) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("event_type", string(w.event.Type)).
				Int("worker", id).
				Msg("Event handler panicked")
		}
	}()
	w.handler(w.event)
}

// Subscribe registers a handler for one event type.
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(handler Handler) {
	for _, t := range Types() {
		b.Subscribe(t, handler)
	}
}

// Publish sends an event to all subscribed handlers. Non-blocking: if the
// queue is full or the bus is closing, the event is dropped.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	handlers := b.handlers[event.Type]
	b.mu.RUnlock()

	for _, handler := range handlers {
		select {
		case <-b.closing:
			log.Warn().Str("event_type", string(event.Type)).Msg("Event bus closing, dropping event")
			return
		case b.workQueue <- work{event: event, handler: handler}:
		default:
			log.Warn().Str("event_type", string(event.Type)).Msg("Event bus queue full, dropping event")
		}
	}
}

// Close shuts the worker pool down, waiting for in-flight handlers until ctx
// expires.
func (b *Bus) Close(ctx context.Context) {
	b.closeOnce.Do(func() {
		close(b.closing)
	})

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Debug().Msg("Event bus workers stopped")
	case <-ctx.Done():
		log.Warn().Msg("Event bus shutdown timed out, some events may be lost")
	}
}
