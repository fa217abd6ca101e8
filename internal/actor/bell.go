package actor

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/pro70/dooropener/internal/bus"
	"github.com/pro70/dooropener/internal/hw"
)

// Bell is the locally connected gong: a fire-and-forget timed pulse on the
// work output with an indicator LED. There is no guard against overlapping
// honks; each call runs its own timed sequence and the last one to finish
// determines the final output state.
type Bell struct {
	work      hw.Output
	indicator hw.Output
	events    *bus.Bus

	mu       sync.RWMutex
	honkTime time.Duration
}

// NewBell creates a bell with the given outputs and default pulse duration.
// The events bus may be nil.
func NewBell(work, indicator hw.Output, events *bus.Bus, honkTime time.Duration) *Bell {
	return &Bell{
		work:      work,
		indicator: indicator,
		events:    events,
		honkTime:  honkTime,
	}
}

// SetHonkTime sets the default pulse duration.
func (b *Bell) SetHonkTime(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.honkTime = d
}

// HonkTime returns the default pulse duration.
func (b *Bell) HonkTime() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.honkTime
}

// Honk rings the bell for d, or for the default duration when d is zero.
// It returns immediately.
func (b *Bell) Honk(d time.Duration) {
	if d <= 0 {
		d = b.HonkTime()
	}

	id := uuid.NewString()
	log.Info().Dur("duration", d).Str("event_id", id).Msg("Honk")
	if b.events != nil {
		b.events.Publish(bus.Event{Type: bus.EventBellRung, Data: map[string]any{
			"event_id":   id,
			"duration_s": d.Seconds(),
		}})
	}

	go func() {
		b.work.On()
		b.indicator.On()
		time.Sleep(d)
		b.work.Off()
		b.indicator.Off()
	}()
}
