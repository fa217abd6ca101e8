// Package app wires the controller, its actors and the surrounding services
// together and manages their lifecycle.
package app

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/pro70/dooropener/internal/config"
)

// App is the main application container.
type App struct {
	cfg      *config.Config
	services *Services
	ctx      context.Context
	cancel   context.CancelFunc

	restart atomic.Bool
}

// New creates a new App instance with all services initialized but not
// started.
func New(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	services, err := NewServices(cfg, a.requestRestart)
	if err != nil {
		return nil, err
	}
	a.services = services

	return a, nil
}

// Start starts all services. The provided context is used for cancellation.
func (a *App) Start(ctx context.Context) error {
	a.ctx, a.cancel = context.WithCancel(ctx)

	if err := a.services.Start(a.ctx); err != nil {
		return err
	}

	log.Info().Msg("Dooropener started")
	return nil
}

// Stop gracefully shuts down all services.
func (a *App) Stop() error {
	log.Info().Msg("Shutting down...")

	if a.cancel != nil {
		a.cancel()
	}

	if a.services != nil {
		reason := "shutdown"
		if a.restart.Load() {
			reason = "restart"
		}
		return a.services.Stop(reason)
	}

	return nil
}

// Wait blocks until the application context is cancelled.
func (a *App) Wait() {
	if a.ctx != nil {
		<-a.ctx.Done()
	}
}

// RestartRequested reports whether the life check demanded a full restart.
// The process owner (systemd or similar) performs the actual restart.
func (a *App) RestartRequested() bool {
	return a.restart.Load()
}

// requestRestart is handed to the life check. It marks the restart and
// cancels the application context; the normal shutdown path then runs and
// the process exits with the restart code.
func (a *App) requestRestart() {
	log.Error().Msg("Restart requested")
	a.restart.Store(true)
	if a.cancel != nil {
		a.cancel()
	}
}

// SignalContext creates a context that is cancelled when SIGINT or SIGTERM
// is received.
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warn().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	return ctx
}
