// Package netconn supervises WiFi association with a bounded retry window.
// A failed connection is reported to the caller, never treated as fatal.
package netconn

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/hotdog/internal/clock"
)

// Status is a raw station status code polled from the radio.
type Status int

const (
	StatusIdle          Status = 0
	StatusConnecting    Status = 1
	StatusGotIP         Status = 3
	StatusConnectFail   Status = -1
	StatusNoAPFound     Status = -2
	StatusWrongPassword Status = -3
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusGotIP:
		return "got_ip"
	case StatusConnectFail:
		return "connect_fail"
	case StatusNoAPFound:
		return "no_ap_found"
	case StatusWrongPassword:
		return "wrong_password"
	default:
		return "unknown"
	}
}

// Outcome is the resolved result of a connection attempt.
type Outcome string

const (
	Connected  Outcome = "CONNECTED"
	AuthFailed Outcome = "AUTH_FAILED"
	TimedOut   Outcome = "TIMED_OUT"
)

// classify maps a status to a terminal outcome. Non-terminal codes return false.
func classify(s Status) (Outcome, bool) {
	switch s {
	case StatusGotIP:
		return Connected, true
	case StatusWrongPassword:
		return AuthFailed, true
	default:
		return "", false
	}
}

// Radio is the WiFi station interface.
type Radio interface {
	// SetEnabled powers the radio on or off.
	SetEnabled(on bool) error

	// Connect starts association with the given credentials. It must not
	// block until the association completes.
	Connect(ssid, password string) error

	// Status polls the current station status.
	Status() (Status, error)
}

// Attempt describes one resolved connection attempt.
type Attempt struct {
	StartedAt  time.Time
	Timeout    time.Duration
	LastStatus Status
	Outcome    Outcome
}

// Elapsed returns how long the attempt ran, measured against now.
func (a Attempt) Elapsed(now time.Time) time.Duration {
	return now.Sub(a.StartedAt)
}

// DefaultPollInterval is how often the radio status is polled.
const DefaultPollInterval = 2 * time.Second

// Credentials identify the network to join.
type Credentials struct {
	SSID     string
	Password string
}

// Supervisor brings the radio up and down for the controller.
type Supervisor struct {
	radio        Radio
	clock        clock.Clock
	creds        Credentials
	pollInterval time.Duration
	timeout      time.Duration
}

// NewSupervisor creates a Supervisor. timeout is the default used by Enable.
func NewSupervisor(radio Radio, clk clock.Clock, creds Credentials, pollInterval, timeout time.Duration) *Supervisor {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &Supervisor{
		radio:        radio,
		clock:        clk,
		creds:        creds,
		pollInterval: pollInterval,
		timeout:      timeout,
	}
}

// Connect associates with the configured network, polling until a terminal
// status appears or timeout elapses. ctx cancellation resolves to TimedOut.
func (s *Supervisor) Connect(ctx context.Context, timeout time.Duration) Attempt {
	a := Attempt{StartedAt: s.clock.Now(), Timeout: timeout}

	if st, err := s.radio.Status(); err == nil {
		a.LastStatus = st
		if st == StatusGotIP {
			a.Outcome = Connected
			return a
		}
	}

	if err := s.radio.Connect(s.creds.SSID, s.creds.Password); err != nil {
		log.WithError(err).Warn("netconn: connect request failed")
	}

	for {
		st, err := s.radio.Status()
		if err != nil {
			log.WithError(err).Debug("netconn: status poll failed")
		} else {
			a.LastStatus = st
			if outcome, ok := classify(st); ok {
				a.Outcome = outcome
				return a
			}
		}

		if s.clock.Now().Sub(a.StartedAt) >= timeout {
			a.Outcome = TimedOut
			return a
		}
		if err := s.clock.Sleep(ctx, s.pollInterval); err != nil {
			a.Outcome = TimedOut
			return a
		}
	}
}

// Disable powers the radio off.
func (s *Supervisor) Disable() error {
	return s.radio.SetEnabled(false)
}

// Enable powers the radio on and connects with the default timeout.
func (s *Supervisor) Enable(ctx context.Context) Attempt {
	if err := s.radio.SetEnabled(true); err != nil {
		log.WithError(err).Warn("netconn: enable radio failed")
	}
	a := s.Connect(ctx, s.timeout)
	entry := log.WithFields(log.Fields{
		"outcome": a.Outcome,
		"status":  a.LastStatus.String(),
		"elapsed": a.Elapsed(s.clock.Now()),
	})
	if a.Outcome == Connected {
		entry.Info("netconn: connected")
	} else {
		entry.Warn("netconn: continuing without network")
	}
	return a
}
