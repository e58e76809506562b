package status

import (
	"encoding/json"
	"math"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Mode          string       `json:"mode"`
	Session       string       `json:"session,omitempty"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Last          *RecordJSON  `json:"last_record,omitempty"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Counts        CountsJSON   `json:"counts"`
	Config        ConfigJSON   `json:"config"`
}

// RecordJSON is the JSON representation of the last log record.
type RecordJSON struct {
	Timestamp       string  `json:"timestamp"`
	InsideTemp      float64 `json:"inside_temp"`
	OutsideTemp     float64 `json:"outside_temp"`
	OutsideHumidity float64 `json:"outside_humidity"`
	HeaterOn        bool    `json:"heater_on"`
	SleepSeconds    int64   `json:"sleep_seconds"`
	ControllerTemp  float64 `json:"controller_temp"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// NetworkJSON is the JSON representation of the last connection attempt.
type NetworkJSON struct {
	Outcome string `json:"outcome"`
	Status  string `json:"status"`
	At      string `json:"at"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Records      int `json:"records"`
	Transitions  int `json:"transitions"`
	SensorErrors int `json:"sensor_errors"`
	LogErrors    int `json:"log_errors"`
	SleepCycles  int `json:"sleep_cycles"`
}

// SetpointsJSON is the JSON representation of the hysteresis setpoints.
type SetpointsJSON struct {
	OutsideLow  int `json:"outside_low"`
	OutsideHigh int `json:"outside_high"`
	InsideLow   int `json:"inside_low"`
	InsideHigh  int `json:"inside_high"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Setpoints       SetpointsJSON `json:"setpoints"`
	AverageReads    int           `json:"average_reads"`
	OffIntervalS    int64         `json:"off_interval_s"`
	OnIntervalS     int64         `json:"on_interval_s"`
	SleepS          int64         `json:"sleep_s"`
	SleepEnabled    bool          `json:"sleep_enabled"`
	ConnectTimeoutS int64         `json:"connect_timeout_s"`
	MaxLogFiles     int           `json:"max_log_files"`
	LogDir          string        `json:"log_dir"`
	Broker          string        `json:"broker"`
	HTTPAddr        string        `json:"http_addr"`
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func buildInner(snap Snapshot) StatusInner {
	mode := string(snap.Mode)
	if mode == "" {
		mode = "UNKNOWN"
	}
	cfg := snap.Config

	inner := StatusInner{
		Mode:          mode,
		Session:       snap.Session,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: cfg.Broker},
		Counts: CountsJSON{
			Records:      snap.Counts.Records,
			Transitions:  snap.Counts.Transitions,
			SensorErrors: snap.Counts.SensorErrors,
			LogErrors:    snap.Counts.LogErrors,
			SleepCycles:  snap.Counts.SleepCycles,
		},
		Config: ConfigJSON{
			Setpoints: SetpointsJSON{
				OutsideLow:  cfg.Setpoints.OutsideLow,
				OutsideHigh: cfg.Setpoints.OutsideHigh,
				InsideLow:   cfg.Setpoints.InsideLow,
				InsideHigh:  cfg.Setpoints.InsideHigh,
			},
			AverageReads:    cfg.AverageReads,
			OffIntervalS:    cfg.OffIntervalS,
			OnIntervalS:     cfg.OnIntervalS,
			SleepS:          cfg.SleepS,
			SleepEnabled:    cfg.SleepEnabled,
			ConnectTimeoutS: cfg.ConnectTimeoutS,
			MaxLogFiles:     cfg.MaxLogFiles,
			LogDir:          cfg.LogDir,
			Broker:          cfg.Broker,
			HTTPAddr:        cfg.HTTPAddr,
		},
	}

	if snap.HasRecord {
		r := snap.Last
		inner.Last = &RecordJSON{
			Timestamp:       r.Timestamp.UTC().Format(time.RFC3339),
			InsideTemp:      round1(r.Readings.InsideTemp),
			OutsideTemp:     round1(r.Readings.OutsideTemp),
			OutsideHumidity: round1(r.Readings.OutsideHumidity),
			HeaterOn:        r.HeaterOn,
			SleepSeconds:    int64(r.SleepDuration / time.Second),
			ControllerTemp:  round1(r.ControllerTemp),
		}
	}
	if snap.Connect != nil {
		inner.Network = &NetworkJSON{
			Outcome: snap.Connect.Outcome,
			Status:  snap.Connect.Status,
			At:      snap.Connect.At.UTC().Format(time.RFC3339),
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
