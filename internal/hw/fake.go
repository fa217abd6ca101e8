package hw

import (
	"sync"
	"time"
)

// FakeInput is a test double whose presses are injected by the test.
type FakeInput struct {
	presses chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewFakeInput creates a FakeInput. Presses are handed over only to an
// active waiter, matching edge-event behavior: an edge nobody is waiting for
// is missed, not queued.
func NewFakeInput() *FakeInput {
	return &FakeInput{presses: make(chan struct{})}
}

// Press injects a single activation, waiting up to a second for a waiter to
// pick it up.
func (f *FakeInput) Press() {
	timer := time.NewTimer(time.Second)
	defer timer.Stop()

	select {
	case f.presses <- struct{}{}:
	case <-timer.C:
	}
}

// TryPress injects an activation only if a waiter is ready right now. It
// reports whether the press was delivered.
func (f *FakeInput) TryPress() bool {
	select {
	case f.presses <- struct{}{}:
		return true
	default:
		return false
	}
}

func (f *FakeInput) WaitForPress(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-f.presses:
		return true
	case <-timer.C:
		return false
	}
}

func (f *FakeInput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *FakeInput) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Transition records one output state change.
type Transition struct {
	On bool
	At time.Time
}

// FakeOutput is a test double recording every state change.
type FakeOutput struct {
	mu          sync.Mutex
	on          bool
	transitions []Transition
}

// NewFakeOutput creates a FakeOutput in the inactive state.
func NewFakeOutput() *FakeOutput {
	return &FakeOutput{}
}

func (f *FakeOutput) On()  { f.record(true) }
func (f *FakeOutput) Off() { f.record(false) }

func (f *FakeOutput) record(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.on = on
	f.transitions = append(f.transitions, Transition{On: on, At: time.Now()})
}

func (f *FakeOutput) Close() error { return nil }

// IsOn reports the current state.
func (f *FakeOutput) IsOn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.on
}

// Transitions returns a copy of all recorded state changes.
func (f *FakeOutput) Transitions() []Transition {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Transition, len(f.transitions))
	copy(out, f.transitions)
	return out
}
