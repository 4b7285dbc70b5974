// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/fan-sentinel/internal/logic"
)

// Topic is the MQTT topic for fan channel events.
const Topic = "fans/sentinel/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "fans/sentinel/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a channel event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event ChannelEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// ChannelEvent is a detector transition on one fan channel, stamped with
// wall time for the payload.
type ChannelEvent struct {
	Timestamp time.Time
	Channel   int
	Event     logic.Event
	State     logic.State
	Output    logic.Output
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Fan FanPayload `json:"fan"`
}

// FanPayload contains the channel event details.
type FanPayload struct {
	Timestamp string `json:"timestamp"`
	Channel   int    `json:"channel"`
	Event     string `json:"event"`
	State     string `json:"state"`
	Output    string `json:"output"`
	Ticks     uint32 `json:"ticks"`
}

// FormatPayload creates the JSON payload for a channel event.
func FormatPayload(event ChannelEvent) ([]byte, error) {
	payload := Payload{
		Fan: FanPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Channel:   event.Channel,
			Event:     string(event.Event.Type),
			State:     event.State.String(),
			Output:    event.Output.String(),
			Ticks:     uint32(event.Event.At),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
