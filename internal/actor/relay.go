package actor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pro70/dooropener/internal/bus"
	"github.com/pro70/dooropener/internal/caller"
	"github.com/pro70/dooropener/internal/hw"
)

// defaultPollTimeout bounds how long the relay loop blocks on its input
// before re-checking the stop flag.
const defaultPollTimeout = time.Second

// Relay is a physical trigger: a poll loop over one digital input that runs
// the action sequence on every activation. While a sequence runs the loop is
// not polling, so presses during the cool-down are missed, not queued.
type Relay struct {
	trigger

	input       hw.Input
	pollTimeout time.Duration

	hot    atomic.Bool
	cancel context.CancelFunc
}

// NewRelay creates a relay with the given identity, lines and cool-down.
// The events bus may be nil.
func NewRelay(name string, input hw.Input, out hw.Output, c caller.Caller, events *bus.Bus, coolDown time.Duration) *Relay {
	return &Relay{
		trigger: trigger{
			name:     name,
			out:      out,
			caller:   c,
			events:   events,
			coolDown: coolDown,
		},
		input:       input,
		pollTimeout: defaultPollTimeout,
	}
}

// Enable starts the poll loop.
func (r *Relay) Enable() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go r.loop(ctx)
}

// Disable requests the poll loop to stop. It does not wait; the loop exits
// within one poll timeout.
func (r *Relay) Disable() {
	if r.cancel != nil {
		r.cancel()
	}
}

// Hot reports whether an action sequence is currently running.
func (r *Relay) Hot() bool {
	return r.hot.Load()
}

func (r *Relay) loop(ctx context.Context) {
	log.Info().Str("relay", r.name).Msg("Waiting for press")

	for ctx.Err() == nil {
		if !r.input.WaitForPress(r.pollTimeout) {
			continue
		}

		id := uuid.NewString()
		log.Info().Str("relay", r.name).Str("event_id", id).Msg("Pressed")
		r.publish(bus.EventRelayPressed, map[string]any{
			"relay":    r.name,
			"event_id": id,
		})

		r.hot.Store(true)
		r.sequence(id)
		r.hot.Store(false)
	}

	log.Info().Str("relay", r.name).Msg("Stopped")
}
