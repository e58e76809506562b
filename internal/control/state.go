// Package control runs the two-state hysteresis thermostat: per-mode state
// instances that sample, average, log and decide, and a single-threaded
// scheduler that drives them.
package control

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/hotdog/internal/clock"
	"github.com/sweeney/hotdog/internal/gpio"
	"github.com/sweeney/hotdog/internal/logic"
	"github.com/sweeney/hotdog/internal/sensor"
)

// Defaults for the sampling cadence.
const (
	DefaultAverageReads = 4
	DefaultOffInterval  = 60 * time.Second
	DefaultOnInterval   = 30 * time.Second
)

// Config is the immutable control configuration.
type Config struct {
	Setpoints    logic.Setpoints
	AverageReads int
	OffInterval  time.Duration
	OnInterval   time.Duration
}

// Interval returns the sampling interval for mode.
func (c Config) Interval(mode logic.Mode) time.Duration {
	if mode == logic.ModeOn {
		return c.OnInterval
	}
	return c.OffInterval
}

// Recorder receives everything the controller produces. Implementations
// report their own failures; none of them may stop the control loop.
type Recorder interface {
	Record(rec logic.Record, mode logic.Mode)
	SensorError(err error)
	Entered(mode logic.Mode, at time.Time)
}

// Sleeper runs one low-power cycle and returns the real time spent asleep.
type Sleeper interface {
	Cycle(ctx context.Context) (time.Duration, error)
}

// Deps are the collaborators injected into every state instance.
type Deps struct {
	Source      sensor.Source
	Thermometer sensor.Thermometer // optional
	Outputs     gpio.Outputs
	Clock       clock.Clock
	Recorder    Recorder
	Sleeper     Sleeper // optional; nil disables the sleep cycle
}

// ResultKind distinguishes the two outcomes of a step.
type ResultKind int

const (
	// Continue asks the scheduler to wait Result.Wait before the next step.
	Continue ResultKind = iota
	// Transition asks the scheduler to replace the state with Result.Next.
	Transition
)

// Result is what a step yields to the scheduler.
type Result struct {
	Kind ResultKind
	Wait time.Duration
	Next logic.Mode
}

// State is one instance of a thermostat mode. It owns its averaging buffers;
// a mode change always builds a fresh State.
type State struct {
	mode logic.Mode
	cfg  Config
	deps Deps
	avg  *logic.Averager
	last logic.Readings
}

// Enter builds the state for mode, actuates the relay, and logs the mode
// change with the last known readings before any sampling happens.
func Enter(mode logic.Mode, last logic.Readings, cfg Config, deps Deps) *State {
	s := &State{
		mode: mode,
		cfg:  cfg,
		deps: deps,
		avg:  logic.NewAverager(cfg.AverageReads),
		last: last,
	}

	deps.Outputs.SetRelay(mode.HeaterOn())
	now := deps.Clock.Now()
	deps.Recorder.Entered(mode, now)
	deps.Recorder.Record(s.record(now, last, 0), mode)
	return s
}

// Mode returns the mode this instance implements.
func (s *State) Mode() logic.Mode {
	return s.mode
}

// Last returns the most recent readings seen by this instance, or the ones it
// was entered with.
func (s *State) Last() logic.Readings {
	return s.last
}

// Buffered returns the number of samples held in the averaging window.
func (s *State) Buffered() int {
	return s.avg.Len()
}

// Step takes one sample and decides what happens next. The only error it
// returns is a done context.
func (s *State) Step(ctx context.Context) (Result, error) {
	cont := Result{Kind: Continue, Wait: s.cfg.Interval(s.mode)}

	sample, err := s.acquire(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		// Failed samples are skipped and do not count toward the window.
		s.deps.Recorder.SensorError(err)
		return cont, nil
	}

	means, ok := s.avg.Observe(sample)
	if !ok {
		s.last = logic.ReadingsOf(sample)
		s.deps.Recorder.Record(s.record(sample.TakenAt, s.last, 0), s.mode)
		return cont, nil
	}

	s.last = means.Readings()
	s.deps.Recorder.Record(s.record(sample.TakenAt, s.last, 0), s.mode)

	if next, fired := logic.Next(s.mode, means, s.cfg.Setpoints); fired {
		log.WithFields(log.Fields{
			"from":    s.mode,
			"to":      next,
			"inside":  means.InsideTemp,
			"outside": means.OutsideTemp,
		}).Info("control: threshold crossed")
		return Result{Kind: Transition, Next: next}, nil
	}

	if s.mode == logic.ModeOff && s.deps.Sleeper != nil {
		if err := s.sleep(ctx); err != nil {
			return Result{}, err
		}
	}
	return cont, nil
}

// acquire requests a conversion, waits the settle delay, and reads.
func (s *State) acquire(ctx context.Context) (logic.Sample, error) {
	if err := s.deps.Source.RequestConversion(); err != nil {
		return logic.Sample{}, err
	}
	if err := s.deps.Clock.Sleep(ctx, s.deps.Source.SettleDelay()); err != nil {
		return logic.Sample{}, err
	}
	sample, err := s.deps.Source.ReadLatest()
	if err != nil {
		return logic.Sample{}, err
	}
	sample.TakenAt = s.deps.Clock.Now()
	return sample, nil
}

// sleep runs the power cycle and logs a record carrying the real elapsed time.
// It returns an error only if ctx is done, after the record is written.
func (s *State) sleep(ctx context.Context) error {
	elapsed, err := s.deps.Sleeper.Cycle(ctx)
	if err != nil && ctx.Err() == nil {
		log.WithError(err).Warn("control: sleep cycle")
	}
	s.deps.Recorder.Record(s.record(s.deps.Clock.Now(), s.last, elapsed), s.mode)
	return ctx.Err()
}

func (s *State) record(at time.Time, r logic.Readings, slept time.Duration) logic.Record {
	return logic.Record{
		Timestamp:      at,
		Readings:       r,
		HeaterOn:       s.mode.HeaterOn(),
		SleepDuration:  slept,
		ControllerTemp: s.controllerTemp(),
	}
}

func (s *State) controllerTemp() float64 {
	if s.deps.Thermometer == nil {
		return 0
	}
	t, err := s.deps.Thermometer.ControllerTemp()
	if err != nil {
		log.WithError(err).Debug("control: controller temperature")
		return 0
	}
	return t
}
