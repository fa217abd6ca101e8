package actor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pro70/dooropener/internal/bus"
	"github.com/pro70/dooropener/internal/caller"
	"github.com/pro70/dooropener/internal/hw"
)

// restartThreshold is the number of consecutive probe failures above which
// the life check requests a full restart.
const restartThreshold = 5

// LifeCheck periodically probes the configured URL to verify connectivity.
// The online indicator follows the probe result, consecutive failures are
// counted, and once the counter exceeds the threshold the restart callback
// is invoked. Between cycles both indicators blink off briefly as a
// heartbeat.
type LifeCheck struct {
	running hw.Output
	online  hw.Output
	caller  caller.Caller
	events  *bus.Bus
	restart func()

	mu       sync.RWMutex
	url      string
	interval time.Duration

	heartbeatPause time.Duration
	fails          atomic.Int32
	cancel         context.CancelFunc
}

// NewLifeCheck creates a life check. The restart callback is invoked at most
// once, after which the loop exits. The events bus may be nil.
func NewLifeCheck(running, online hw.Output, c caller.Caller, events *bus.Bus, restart func(), url string, interval time.Duration) *LifeCheck {
	return &LifeCheck{
		running:        running,
		online:         online,
		caller:         c,
		events:         events,
		restart:        restart,
		url:            url,
		interval:       interval,
		heartbeatPause: 500 * time.Millisecond,
	}
}

// SetURL sets the probe URL. An empty URL skips the probe.
func (l *LifeCheck) SetURL(url string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.url = url
}

// URL returns the probe URL.
func (l *LifeCheck) URL() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.url
}

// SetInterval sets the probe interval.
func (l *LifeCheck) SetInterval(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.interval = d
}

// Interval returns the probe interval.
func (l *LifeCheck) Interval() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.interval
}

// Fails returns the current consecutive-failure count.
func (l *LifeCheck) Fails() int {
	return int(l.fails.Load())
}

// Enable starts the check loop.
func (l *LifeCheck) Enable() {
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	go l.loop(ctx)
}

// Disable requests the loop to stop and clears the running indicator
// immediately. It does not wait for the loop to observe the flag.
func (l *LifeCheck) Disable() {
	if l.cancel != nil {
		l.cancel()
	}
	l.running.Off()
}

func (l *LifeCheck) loop(ctx context.Context) {
	log.Info().Msg("Life check started")

	online := false
	first := true

	for ctx.Err() == nil {
		l.running.On()

		url, interval := l.snapshot()
		ok := l.check(url)

		if first || ok != online {
			first = false
			online = ok
			if l.events != nil {
				l.events.Publish(bus.Event{Type: bus.EventOnlineChanged, Data: map[string]any{
					"online": ok,
				}})
			}
		}

		if n := l.fails.Load(); n > restartThreshold {
			log.Error().Int32("fails", n).Msg("Too many consecutive failures, requesting restart")
			if l.events != nil {
				l.events.Publish(bus.Event{Type: bus.EventRestartRequested, Data: map[string]any{
					"fails": int(n),
				}})
			}
			l.restart()
			return
		}

		time.Sleep(interval)

		// Heartbeat blink between cycles.
		l.online.Off()
		l.running.Off()
		time.Sleep(l.heartbeatPause)
	}

	log.Info().Msg("Life check stopped")
}

func (l *LifeCheck) snapshot() (string, time.Duration) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.url, l.interval
}

// check runs one probe. A missing URL forces the indicator off without
// touching the failure counter. The probe is not tied to the loop context:
// Disable is advisory and must not fail an in-flight probe.
func (l *LifeCheck) check(url string) bool {
	if url == "" {
		log.Warn().Msg("Online check skipped, no URL configured")
		l.online.Off()
		return false
	}

	if err := l.caller.Get(context.Background(), url); err != nil {
		log.Error().Err(err).Str("url", url).Msg("Online check failed")
		l.online.Off()
		l.fails.Add(1)
		return false
	}

	log.Debug().Str("url", url).Msg("Online check OK")
	l.online.On()
	l.fails.Store(0)
	return true
}
