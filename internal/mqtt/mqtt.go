// Package mqtt publishes thermostat telemetry and lifecycle events, with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"math"
	"time"

	"github.com/sweeney/hotdog/internal/logic"
)

// Topic is the MQTT topic for per-record telemetry.
const Topic = "hotdog/thermostat/telemetry"

// TopicSystem is the MQTT topic for lifecycle and mode-change events.
const TopicSystem = "hotdog/thermostat/system"

// Publisher publishes thermostat data to MQTT.
type Publisher interface {
	// Publish sends one log record with the mode that produced it.
	// Returns error if publishing fails (should not stop the control loop).
	Publish(rec logic.Record, mode logic.Mode) error

	// PublishSystem sends a lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// System event names.
const (
	EventStartup  = "STARTUP"
	EventShutdown = "SHUTDOWN"
	EventMode     = "MODE"
	EventOffline  = "OFFLINE"
)

// SystemEvent represents a lifecycle event (startup, shutdown, mode change).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string     // e.g. "SIGTERM" (shutdown only)
	Mode       logic.Mode // mode entered (MODE only)
	Session    string
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool
}

// Payload is the telemetry message envelope.
type Payload struct {
	Hotdog TelemetryPayload `json:"hotdog"`
}

// TelemetryPayload carries one record.
type TelemetryPayload struct {
	Timestamp       string  `json:"timestamp"`
	Session         string  `json:"session,omitempty"`
	Mode            string  `json:"mode"`
	InsideTemp      float64 `json:"inside_temp"`
	OutsideTemp     float64 `json:"outside_temp"`
	OutsideHumidity float64 `json:"outside_humidity"`
	HeaterOn        bool    `json:"heater_on"`
	SleepSeconds    int64   `json:"sleep_seconds"`
	ControllerTemp  float64 `json:"controller_temp"`
}

// FormatPayload creates the JSON telemetry payload for a record.
func FormatPayload(rec logic.Record, mode logic.Mode, session string) ([]byte, error) {
	payload := Payload{
		Hotdog: TelemetryPayload{
			Timestamp:       rec.Timestamp.UTC().Format(time.RFC3339),
			Session:         session,
			Mode:            string(mode),
			InsideTemp:      round1(rec.Readings.InsideTemp),
			OutsideTemp:     round1(rec.Readings.OutsideTemp),
			OutsideHumidity: round1(rec.Readings.OutsideHumidity),
			HeaterOn:        rec.HeaterOn,
			SleepSeconds:    int64(rec.SleepDuration / time.Second),
			ControllerTemp:  round1(rec.ControllerTemp),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the envelope for simple lifecycle events.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Session   string `json:"session,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Event:     event.Event,
			Reason:    event.Reason,
			Mode:      string(event.Mode),
			Session:   event.Session,
		},
	}
	// A zero timestamp is omitted.
	if !event.Timestamp.IsZero() {
		payload.System.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(payload)
}

// WillPayload is the retained OFFLINE message the broker publishes when the
// connection drops. It carries no timestamp since it is built at connect time.
func WillPayload(session string) []byte {
	data, _ := FormatSystemPayload(SystemEvent{Event: EventOffline, Session: session})
	return data
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// NopPublisher discards everything. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(logic.Record, logic.Mode) error { return nil }
func (NopPublisher) PublishSystem(SystemEvent) error        { return nil }
func (NopPublisher) Close() error                           { return nil }
func (NopPublisher) IsConnected() bool                      { return false }
