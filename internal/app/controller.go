package app

import (
	"fmt"
	"time"

	"github.com/pro70/dooropener/internal/actor"
	"github.com/pro70/dooropener/internal/bus"
	"github.com/pro70/dooropener/internal/caller"
	"github.com/pro70/dooropener/internal/config"
	"github.com/pro70/dooropener/internal/hw"
	"github.com/pro70/dooropener/internal/ledger"
	"github.com/pro70/dooropener/internal/store"
)

// Compiled-in actor defaults, overridden by the config snapshot at startup
// and by the control API at runtime.
const (
	defaultRelay1CoolDown    = 3 * time.Second
	defaultRelay2CoolDown    = 60 * time.Second
	defaultBellActorCoolDown = time.Second
	defaultHonkTime          = 200 * time.Millisecond
	defaultOnlineInterval    = 60 * time.Second
	defaultOnlineURL         = "https://google.de"
)

// Controller owns the fixed actor set: two physical relays, the bell actor
// (virtual relay), the local bell and the life check, plus the config store
// binding their runtime settings to the known key set.
type Controller struct {
	relay1    *actor.Relay
	relay2    *actor.Relay
	bellActor *actor.VirtualRelay
	bell      *actor.Bell
	life      *actor.LifeCheck

	store  *store.Store
	ledger *ledger.Ledger
	lines  []interface{ Close() error }
}

// NewController builds the actor set on the given board, binds the config
// store and applies the persisted snapshot. The restart callback is handed
// to the life check.
func NewController(board hw.Board, pins config.GPIOConfig, c caller.Caller, events *bus.Bus, led *ledger.Ledger, statePath string, restart func()) (*Controller, error) {
	ctrl := &Controller{ledger: led}

	relay1In, err := ctrl.input(board, pins.Relay1In)
	if err != nil {
		return nil, fmt.Errorf("relay1 input: %w", err)
	}
	relay1LED, err := ctrl.output(board, pins.Relay1LED)
	if err != nil {
		return nil, fmt.Errorf("relay1 led: %w", err)
	}
	relay2In, err := ctrl.input(board, pins.Relay2In)
	if err != nil {
		return nil, fmt.Errorf("relay2 input: %w", err)
	}
	relay2LED, err := ctrl.output(board, pins.Relay2LED)
	if err != nil {
		return nil, fmt.Errorf("relay2 led: %w", err)
	}
	bellWork, err := ctrl.output(board, pins.BellWork)
	if err != nil {
		return nil, fmt.Errorf("bell work: %w", err)
	}
	bellLED, err := ctrl.output(board, pins.BellLED)
	if err != nil {
		return nil, fmt.Errorf("bell led: %w", err)
	}
	runLED, err := ctrl.output(board, pins.RunLED)
	if err != nil {
		return nil, fmt.Errorf("run led: %w", err)
	}
	onlineLED, err := ctrl.output(board, pins.OnlineLED)
	if err != nil {
		return nil, fmt.Errorf("online led: %w", err)
	}

	ctrl.relay1 = actor.NewRelay("relay1", relay1In, relay1LED, c, events, defaultRelay1CoolDown)
	ctrl.relay2 = actor.NewRelay("relay2", relay2In, relay2LED, c, events, defaultRelay2CoolDown)
	// The bell actor has no signal line of its own.
	ctrl.bellActor = actor.NewVirtualRelay("bellactor", hw.NullOutput(), c, events, defaultBellActorCoolDown)
	ctrl.bell = actor.NewBell(bellWork, bellLED, events, defaultHonkTime)
	ctrl.life = actor.NewLifeCheck(runLED, onlineLED, c, events, restart, defaultOnlineURL, defaultOnlineInterval)

	ctrl.store = store.New(statePath)
	ctrl.bind()

	if err := ctrl.store.Load(); err != nil {
		return nil, fmt.Errorf("load config snapshot: %w", err)
	}

	return ctrl, nil
}

// bind registers every known config key against its live actor field.
func (c *Controller) bind() {
	c.store.BindURL("r1_on_url", c.relay1.OnURL, c.relay1.SetOnURL)
	c.store.BindURL("r1_off_url", c.relay1.OffURL, c.relay1.SetOffURL)
	c.store.BindSeconds("r1_time", c.relay1.CoolDown, c.relay1.SetCoolDown)

	c.store.BindURL("r2_on_url", c.relay2.OnURL, c.relay2.SetOnURL)
	c.store.BindURL("r2_off_url", c.relay2.OffURL, c.relay2.SetOffURL)
	c.store.BindSeconds("r2_time", c.relay2.CoolDown, c.relay2.SetCoolDown)

	c.store.BindURL("ba_on_url", c.bellActor.OnURL, c.bellActor.SetOnURL)
	c.store.BindURL("ba_off_url", c.bellActor.OffURL, c.bellActor.SetOffURL)
	c.store.BindSeconds("ba_time", c.bellActor.CoolDown, c.bellActor.SetCoolDown)

	c.store.BindURL("online_url", c.life.URL, c.life.SetURL)
	c.store.BindSeconds("online_time", c.life.Interval, c.life.SetInterval)

	c.store.BindSeconds("bell_time", c.bell.HonkTime, c.bell.SetHonkTime)
}

func (c *Controller) input(board hw.Board, pin int) (hw.Input, error) {
	in, err := board.Input(pin)
	if err != nil {
		return nil, err
	}
	c.lines = append(c.lines, in)
	return in, nil
}

func (c *Controller) output(board hw.Board, pin int) (hw.Output, error) {
	out, err := board.Output(pin)
	if err != nil {
		return nil, err
	}
	c.lines = append(c.lines, out)
	return out, nil
}

// Start enables the life check and both relays. The bell actor and the bell
// are purely call-triggered and need no enabling.
func (c *Controller) Start() {
	c.life.Enable()
	c.relay1.Enable()
	c.relay2.Enable()
}

// Stop disables the life check and both relays. It does not wait for their
// loops to exit; they observe the stop flag within one poll timeout.
func (c *Controller) Stop() {
	c.life.Disable()
	c.relay1.Disable()
	c.relay2.Disable()
}

// Close releases all hardware lines.
func (c *Controller) Close() error {
	var firstErr error
	for _, l := range c.lines {
		if err := l.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Honk rings the local bell for d, or the stored default when d is zero.
func (c *Controller) Honk(d time.Duration) {
	c.bell.Honk(d)
}

// RingBell triggers the bell actor.
func (c *Controller) RingBell() {
	c.bellActor.Trigger()
}

// Config returns the full runtime config snapshot.
func (c *Controller) Config() map[string]store.Value {
	return c.store.All()
}

// ConfigValue returns one runtime config value.
func (c *Controller) ConfigValue(key string) (store.Value, error) {
	return c.store.Get(key)
}

// Update sets one runtime config value and persists the snapshot.
func (c *Controller) Update(key, value string) (store.Value, error) {
	return c.store.Set(key, value)
}

// RecentEvents returns the newest ledger entries.
func (c *Controller) RecentEvents(limit int) ([]*ledger.Entry, error) {
	if c.ledger == nil {
		return nil, nil
	}
	return c.ledger.Recent(limit)
}
