package actor

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pro70/dooropener/internal/bus"
	"github.com/pro70/dooropener/internal/caller"
	"github.com/pro70/dooropener/internal/hw"
)

// VirtualRelay runs the same action sequence as Relay but is driven by an
// explicit Trigger call from the control plane instead of a polled input.
// A Trigger while a sequence is running is a logged no-op.
type VirtualRelay struct {
	trigger

	hotMu sync.Mutex
	hot   bool
}

// NewVirtualRelay creates a virtual relay. The events bus may be nil.
func NewVirtualRelay(name string, out hw.Output, c caller.Caller, events *bus.Bus, coolDown time.Duration) *VirtualRelay {
	return &VirtualRelay{
		trigger: trigger{
			name:     name,
			out:      out,
			caller:   c,
			events:   events,
			coolDown: coolDown,
		},
	}
}

// Trigger starts one action sequence in the background and returns
// immediately. While the sequence is hot, further calls are discarded.
func (v *VirtualRelay) Trigger() {
	v.hotMu.Lock()
	if v.hot {
		v.hotMu.Unlock()
		log.Info().Str("trigger", v.name).Msg("Still hot, ignoring trigger")
		v.publish(bus.EventTriggerRejected, map[string]any{"trigger": v.name})
		return
	}
	v.hot = true
	v.hotMu.Unlock()

	id := uuid.NewString()
	log.Info().Str("trigger", v.name).Str("event_id", id).Msg("Triggered")
	v.publish(bus.EventRelayPressed, map[string]any{
		"relay":    v.name,
		"event_id": id,
		"virtual":  true,
	})

	go func() {
		v.sequence(id)

		v.hotMu.Lock()
		v.hot = false
		v.hotMu.Unlock()
	}()
}

// Hot reports whether an action sequence is currently running.
func (v *VirtualRelay) Hot() bool {
	v.hotMu.Lock()
	defer v.hotMu.Unlock()
	return v.hot
}
