// Package actor contains the concurrent building blocks of the controller:
// two physical relays, one virtual relay, the bell and the life check. Each
// actor runs its own goroutines and observes stop requests cooperatively at
// its wait points, so disabling an actor returns immediately while the loop
// winds down within one poll timeout.
package actor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pro70/dooropener/internal/bus"
	"github.com/pro70/dooropener/internal/caller"
	"github.com/pro70/dooropener/internal/hw"
)

// trigger holds the state shared by physical and virtual relays: the action
// URLs, the cool-down, the signal output and the action sequence itself.
//
// Settings are read once at the start of a sequence; a mutation made while a
// sequence is in flight takes effect with the next activation.
type trigger struct {
	name   string
	out    hw.Output
	caller caller.Caller
	events *bus.Bus

	mu       sync.RWMutex
	onURL    string
	offURL   string
	coolDown time.Duration
}

func (t *trigger) SetOnURL(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onURL = url
}

func (t *trigger) OnURL() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onURL
}

func (t *trigger) SetOffURL(url string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offURL = url
}

func (t *trigger) OffURL() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.offURL
}

func (t *trigger) SetCoolDown(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.coolDown = d
}

func (t *trigger) CoolDown() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.coolDown
}

// settings returns one consistent view for a whole action sequence.
func (t *trigger) settings() (onURL, offURL string, coolDown time.Duration) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.onURL, t.offURL, t.coolDown
}

// sequence runs one activation: output on, on-call, cool-down, off-call,
// output off. The caller must ensure only one sequence runs at a time per
// trigger instance.
func (t *trigger) sequence(id string) {
	onURL, offURL, coolDown := t.settings()

	t.out.On()
	t.call(id, "on", onURL)
	time.Sleep(coolDown)
	t.call(id, "off", offURL)
	t.out.Off()

	log.Info().Str("trigger", t.name).Str("event_id", id).Msg("Cooled down")
}

// call performs one action call. A missing URL is a warning, a failed call
// is an error; neither stops the sequence.
func (t *trigger) call(id, phase, url string) {
	if url == "" {
		log.Warn().Str("trigger", t.name).Str("phase", phase).Msg("No action URL configured")
		return
	}

	if err := t.caller.Get(context.Background(), url); err != nil {
		log.Error().Err(err).Str("trigger", t.name).Str("url", url).Msg("Action call failed")
		t.publish(bus.EventCallFailed, map[string]any{
			"trigger":  t.name,
			"phase":    phase,
			"url":      url,
			"event_id": id,
			"error":    err.Error(),
		})
		return
	}

	log.Info().Str("trigger", t.name).Str("url", url).Msg("Action call successful")
}

func (t *trigger) publish(typ bus.EventType, data map[string]any) {
	if t.events != nil {
		t.events.Publish(bus.Event{Type: typ, Data: data})
	}
}
