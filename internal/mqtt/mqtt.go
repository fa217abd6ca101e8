// Package mqtt publishes controller events to an MQTT broker so that home
// automation consumers can follow presses, honks and connectivity changes.
// Publishing is optional; when no broker is configured the daemon runs
// without it.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/pro70/dooropener/internal/bus"
)

// TopicEvents is the MQTT topic for controller events.
const TopicEvents = "dooropener/events"

// TopicSystem is the MQTT topic for lifecycle events.
const TopicSystem = "dooropener/system"

// Publisher publishes events to the broker.
type Publisher interface {
	// PublishEvent sends a controller event.
	// Returns error if publishing fails (must not crash the process).
	PublishEvent(event bus.Event) error

	// PublishSystem sends a lifecycle event (STARTUP, SHUTDOWN).
	PublishSystem(event, reason string) error

	// Close disconnects from the broker.
	Close() error
}

// eventPayload is the JSON wire format for controller events.
type eventPayload struct {
	Timestamp string         `json:"timestamp"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
}

// systemPayload is the JSON wire format for lifecycle events.
type systemPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatEventPayload creates the JSON payload for a controller event.
func FormatEventPayload(event bus.Event) ([]byte, error) {
	return json.Marshal(eventPayload{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Event:     string(event.Type),
		Data:      event.Data,
	})
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
func FormatSystemPayload(event, reason string) ([]byte, error) {
	return json.Marshal(systemPayload{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Event:     event,
		Reason:    reason,
	})
}
