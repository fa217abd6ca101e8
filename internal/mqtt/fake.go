package mqtt

import (
	"sync"

	"github.com/pro70/dooropener/internal/bus"
)

// FakePublisher is a test double recording every published event.
type FakePublisher struct {
	mu     sync.Mutex
	events []bus.Event
	system []string
	closed bool

	// Err, if set, is returned by both publish methods.
	Err error
}

// NewFakePublisher creates an empty FakePublisher.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishEvent records the event.
func (f *FakePublisher) PublishEvent(event bus.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.events = append(f.events, event)
	return nil
}

// PublishSystem records the lifecycle event name.
func (f *FakePublisher) PublishSystem(event, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.system = append(f.system, event)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Events returns a copy of recorded controller events.
func (f *FakePublisher) Events() []bus.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bus.Event, len(f.events))
	copy(out, f.events)
	return out
}

// System returns recorded lifecycle event names.
func (f *FakePublisher) System() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.system))
	copy(out, f.system)
	return out
}

// Closed reports whether Close was called.
func (f *FakePublisher) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
