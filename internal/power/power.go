// Package power runs the low-power sleep cycle: radio off, suspend, radio on,
// with the real elapsed time reported back.
package power

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/hotdog/internal/clock"
	"github.com/sweeney/hotdog/internal/netconn"
)

// DefaultSleepDuration is the nominal suspend length.
const DefaultSleepDuration = 15 * time.Minute

// Suspender puts the board to sleep for about d and returns on wake.
type Suspender interface {
	Suspend(ctx context.Context, d time.Duration) error
}

// Network is the part of the connection supervisor the sleep cycle needs.
type Network interface {
	Disable() error
	Enable(ctx context.Context) netconn.Attempt
}

// Manager performs one sleep cycle at a time.
type Manager struct {
	clock     clock.Clock
	suspender Suspender
	network   Network
	duration  time.Duration
}

// NewManager creates a Manager. network may be nil when running headless.
func NewManager(clk clock.Clock, suspender Suspender, network Network, duration time.Duration) *Manager {
	return &Manager{
		clock:     clk,
		suspender: suspender,
		network:   network,
		duration:  duration,
	}
}

// Duration returns the configured nominal suspend length.
func (m *Manager) Duration() time.Duration {
	return m.duration
}

// Cycle disables networking, suspends, and re-enables networking. It returns
// the wall-clock time spent suspended, which can differ from the nominal
// duration on early wake or drift. A suspend error is returned alongside the
// elapsed time; networking is re-enabled either way. A negative elapsed time
// from a wall-clock step is reported as zero.
func (m *Manager) Cycle(ctx context.Context) (time.Duration, error) {
	start := m.clock.Now()

	if m.network != nil {
		if err := m.network.Disable(); err != nil {
			log.WithError(err).Warn("power: disable network")
		}
	}

	log.WithField("duration", m.duration).Info("power: suspending")
	suspendErr := m.suspender.Suspend(ctx, m.duration)
	elapsed := m.clock.Now().Sub(start)
	if elapsed < 0 {
		// The wall clock stepped back while suspended.
		log.WithField("elapsed", elapsed).Warn("power: clock moved backwards during suspend")
		elapsed = 0
	}
	log.WithField("elapsed", elapsed).Info("power: resumed")

	if m.network != nil && ctx.Err() == nil {
		m.network.Enable(ctx)
	}

	if suspendErr != nil {
		return elapsed, fmt.Errorf("suspend: %w", suspendErr)
	}
	return elapsed, nil
}

// TimerSuspender sleeps on the clock without changing the board power state.
type TimerSuspender struct {
	Clock clock.Clock
}

// Suspend waits for d.
func (s TimerSuspender) Suspend(ctx context.Context, d time.Duration) error {
	return s.Clock.Sleep(ctx, d)
}

// RTCWakeSuspender suspends the board with util-linux rtcwake, arming the RTC
// alarm to wake it. If rtcwake fails, it falls back to Fallback.
type RTCWakeSuspender struct {
	// Mode is the rtcwake -m argument, e.g. "freeze" or "mem".
	Mode string

	// Bin is the rtcwake executable, "rtcwake" if empty.
	Bin string

	Fallback Suspender
}

// Suspend runs rtcwake for d, rounded up to whole seconds.
func (s RTCWakeSuspender) Suspend(ctx context.Context, d time.Duration) error {
	bin := s.Bin
	if bin == "" {
		bin = "rtcwake"
	}
	secs := int64((d + time.Second - 1) / time.Second)
	out, err := exec.CommandContext(ctx, bin, "-m", s.Mode, "-s", strconv.FormatInt(secs, 10)).CombinedOutput()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if s.Fallback == nil {
		return fmt.Errorf("rtcwake: %w: %s", err, out)
	}
	log.WithError(err).WithField("output", string(out)).Warn("power: rtcwake failed, falling back to timer")
	return s.Fallback.Suspend(ctx, d)
}
