// Package status provides a thread-safe status tracker for the hotdog daemon.
// The control loop writes to it; HTTP handlers and MQTT lifecycle events read it.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/hotdog/internal/logic"
)

// ConnectInfo is the result of the last network attempt. This is a local copy
// to avoid importing internal/netconn from status.
type ConnectInfo struct {
	Outcome string
	Status  string
	At      time.Time
}

// Config contains daemon configuration for display.
type Config struct {
	Setpoints       logic.Setpoints
	AverageReads    int
	OffIntervalS    int64
	OnIntervalS     int64
	SleepS          int64
	SleepEnabled    bool
	ConnectTimeoutS int64
	MaxLogFiles     int
	LogDir          string
	Broker          string
	HTTPAddr        string
}

// Counts tallies notable events since startup.
type Counts struct {
	Records      int
	Transitions  int
	SensorErrors int
	LogErrors    int
	SleepCycles  int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Mode          logic.Mode
	Last          logic.Record
	HasRecord     bool
	Counts        Counts
	Connect       *ConnectInfo
	Session       string
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, session string, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Session:   session,
			Config:    cfg,
		},
	}
}

// SetMode records the active thermostat mode. A change from a previous mode
// counts as a transition; the first mode set at startup does not.
func (t *Tracker) SetMode(mode logic.Mode) {
	t.mu.Lock()
	if t.snap.Mode != "" && t.snap.Mode != mode {
		t.snap.Counts.Transitions++
	}
	t.snap.Mode = mode
	t.mu.Unlock()
}

// RecordWritten stores the latest record.
func (t *Tracker) RecordWritten(rec logic.Record) {
	t.mu.Lock()
	t.snap.Last = rec
	t.snap.HasRecord = true
	t.snap.Counts.Records++
	if rec.SleepDuration > 0 {
		t.snap.Counts.SleepCycles++
	}
	t.mu.Unlock()
}

// SensorError counts a failed sample.
func (t *Tracker) SensorError() {
	t.mu.Lock()
	t.snap.Counts.SensorErrors++
	t.mu.Unlock()
}

// LogError counts a failed log write.
func (t *Tracker) LogError() {
	t.mu.Lock()
	t.snap.Counts.LogErrors++
	t.mu.Unlock()
}

// SetConnect records the last network attempt.
func (t *Tracker) SetConnect(info ConnectInfo) {
	t.mu.Lock()
	t.snap.Connect = &info
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	if s.Connect != nil {
		c := *s.Connect
		s.Connect = &c
	}
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
