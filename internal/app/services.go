package app

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pro70/dooropener/internal/bus"
	"github.com/pro70/dooropener/internal/caller"
	"github.com/pro70/dooropener/internal/config"
	"github.com/pro70/dooropener/internal/db"
	"github.com/pro70/dooropener/internal/hw"
	"github.com/pro70/dooropener/internal/ledger"
	"github.com/pro70/dooropener/internal/mqtt"
	"github.com/pro70/dooropener/internal/server"
)

// Services is a container for all application services. It manages
// initialization order and dependencies.
type Services struct {
	cfg *config.Config

	// Core infrastructure
	DB     *db.DB
	Ledger *ledger.Ledger
	Bus    *bus.Bus
	Board  hw.Board
	MQTT   mqtt.Publisher

	// Domain
	Controller *Controller
	Server     *server.Server
}

// NewServices creates all services with proper dependency injection. The
// restart callback is invoked by the life check when connectivity is lost
// for too long.
func NewServices(cfg *config.Config, restart func()) (*Services, error) {
	s := &Services{cfg: cfg}

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	s.DB = database
	s.Ledger = ledger.New(database.DB)

	s.Bus = bus.New()

	if cfg.GPIO.Enabled {
		board, err := hw.OpenGPIO(cfg.GPIO.Chip)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Board = board
	} else {
		log.Warn().Msg("GPIO disabled, running against null hardware")
		s.Board = hw.NullBoard{}
	}

	httpCaller := caller.NewHTTP(cfg.HTTPTimeout.Duration())

	s.Controller, err = NewController(s.Board, cfg.GPIO, httpCaller, s.Bus, s.Ledger, cfg.StatePath, restart)
	if err != nil {
		s.Close()
		return nil, err
	}

	// Every domain event lands in the ledger.
	s.Bus.SubscribeAll(func(e bus.Event) {
		eventID, _ := e.Data["event_id"].(string)
		if err := s.Ledger.Append(string(e.Type), eventID, e.Data); err != nil {
			log.Error().Err(err).Str("event_type", string(e.Type)).Msg("Failed to append ledger entry")
		}
	})

	if cfg.MQTT.Broker != "" {
		publisher, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.MQTT = publisher
		s.Bus.SubscribeAll(func(e bus.Event) {
			if err := publisher.PublishEvent(e); err != nil {
				log.Error().Err(err).Str("event_type", string(e.Type)).Msg("Failed to publish event to MQTT")
			}
		})
	}

	s.Server = server.New(cfg.Listen, cfg.StaticDir, s.Controller)

	return s, nil
}

// Start starts the actors and background services.
func (s *Services) Start(ctx context.Context) error {
	s.Bus.Publish(bus.Event{Type: bus.EventStartup})
	if s.MQTT != nil {
		if err := s.MQTT.PublishSystem("STARTUP", ""); err != nil {
			log.Error().Err(err).Msg("Failed to publish startup event")
		}
	}

	s.Controller.Start()

	go func() {
		if err := s.Server.Run(ctx, s.cfg.ShutdownTimeout.Duration()); err != nil {
			log.Error().Err(err).Msg("Control API server error")
		}
	}()

	go s.ledgerCleanup(ctx)

	return nil
}

// ledgerCleanup periodically applies the ledger retention policy.
func (s *Services) ledgerCleanup(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Ledger.CleanupInterval.Duration())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			retention := time.Duration(s.cfg.Ledger.RetentionDays) * 24 * time.Hour
			n, err := s.Ledger.DeleteOlderThan(retention)
			if err != nil {
				log.Error().Err(err).Msg("Ledger cleanup failed")
				continue
			}
			if n > 0 {
				log.Info().Int64("removed", n).Msg("Ledger cleanup done")
			}
		}
	}
}

// Stop gracefully stops all services.
func (s *Services) Stop(reason string) error {
	s.Bus.Publish(bus.Event{Type: bus.EventShutdown, Data: map[string]any{"reason": reason}})

	s.Controller.Stop()

	// Drain in-flight events before shutting the consumers down.
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Duration())
	defer cancel()
	s.Bus.Close(ctx)

	if s.MQTT != nil {
		if err := s.MQTT.PublishSystem("SHUTDOWN", reason); err != nil {
			log.Error().Err(err).Msg("Failed to publish shutdown event")
		}
	}

	s.Close()
	return nil
}

// Close releases all resources.
func (s *Services) Close() {
	if s.MQTT != nil {
		s.MQTT.Close()
	}
	if s.Controller != nil {
		s.Controller.Close()
	}
	if s.Board != nil {
		s.Board.Close()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}
