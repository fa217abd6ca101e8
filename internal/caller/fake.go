package caller

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Call records one Get invocation on a FakeCaller.
type Call struct {
	URL string
	At  time.Time
}

// FakeCaller is a test double recording every call.
type FakeCaller struct {
	mu    sync.Mutex
	calls []Call
	err   error
	failN int
}

// NewFake creates a FakeCaller whose calls succeed.
func NewFake() *FakeCaller {
	return &FakeCaller{}
}

// Get records the call and returns the configured error, if any.
func (f *FakeCaller) Get(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{URL: url, At: time.Now()})
	if f.failN > 0 {
		f.failN--
		return errors.New("simulated call failure")
	}
	return f.err
}

// Fail makes subsequent calls fail.
func (f *FakeCaller) Fail() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = errors.New("simulated call failure")
}

// FailNext makes exactly the next n calls fail.
func (f *FakeCaller) FailNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failN = n
}

// Succeed makes subsequent calls succeed.
func (f *FakeCaller) Succeed() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = nil
	f.failN = 0
}

// Calls returns a copy of all recorded calls.
func (f *FakeCaller) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsTo returns how many calls were made to url.
func (f *FakeCaller) CallsTo(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.URL == url {
			n++
		}
	}
	return n
}
