package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/hotdog/internal/logic"
)

// ErrFault wraps anything a state raises other than an abort.
var ErrFault = errors.New("control fault")

// BlinkOff is how long the indicator goes dark on each liveness tick.
const BlinkOff = 100 * time.Millisecond

// Scheduler runs exactly one state at a time. Between steps it waits in
// one-second liveness ticks; each tick blinks the indicator and is the only
// point where an abort is honoured outside a blocking sleep.
type Scheduler struct {
	cfg    Config
	deps   Deps
	active *State
}

// NewScheduler validates the configuration and returns an idle scheduler.
func NewScheduler(cfg Config, deps Deps) (*Scheduler, error) {
	if err := cfg.Setpoints.Validate(); err != nil {
		return nil, err
	}
	if cfg.AverageReads < 1 {
		return nil, fmt.Errorf("average reads must be positive, got %d", cfg.AverageReads)
	}
	if cfg.OffInterval <= 0 || cfg.OnInterval <= 0 {
		return nil, fmt.Errorf("read intervals must be positive")
	}
	if deps.Source == nil || deps.Outputs == nil || deps.Clock == nil || deps.Recorder == nil {
		return nil, fmt.Errorf("scheduler: missing dependency")
	}
	return &Scheduler{cfg: cfg, deps: deps}, nil
}

// Active returns the running state, or nil before Run.
func (s *Scheduler) Active() *State {
	return s.active
}

// Run enters OFF and drives states until ctx is done, which returns nil.
// Any other failure is logged and returned; the caller should exit.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.enter(logic.ModeOff, logic.Readings{}); err != nil {
		log.WithError(err).WithField("mode", logic.ModeOff).Error("control: unhandled fault")
		return err
	}

	for {
		res, err := s.step(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.WithField("mode", s.active.Mode()).Info("control: stopped")
				return nil
			}
			log.WithError(err).WithField("mode", s.active.Mode()).Error("control: unhandled fault")
			return err
		}

		switch res.Kind {
		case Transition:
			if err := s.enter(res.Next, s.active.Last()); err != nil {
				log.WithError(err).WithField("mode", res.Next).Error("control: unhandled fault")
				return err
			}
		default:
			if err := s.wait(ctx, res.Wait); err != nil {
				log.WithField("mode", s.active.Mode()).Info("control: stopped")
				return nil
			}
		}
	}
}

// enter replaces the active state. s.active is unchanged if entry panics.
func (s *Scheduler) enter(mode logic.Mode, last logic.Readings) (err error) {
	defer recoverFault(&err)
	s.active = Enter(mode, last, s.cfg, s.deps)
	return nil
}

func (s *Scheduler) step(ctx context.Context) (res Result, err error) {
	defer recoverFault(&err)
	return s.active.Step(ctx)
}

func recoverFault(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrFault, r)
	}
}

// wait spends d in whole liveness ticks, rounding up.
func (s *Scheduler) wait(ctx context.Context, d time.Duration) error {
	ticks := int((d + time.Second - 1) / time.Second)
	for i := 0; i < ticks; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.deps.Outputs.SetIndicator(false)
		if err := s.deps.Clock.Sleep(ctx, BlinkOff); err != nil {
			return err
		}
		s.deps.Outputs.SetIndicator(true)
		if err := s.deps.Clock.Sleep(ctx, time.Second-BlinkOff); err != nil {
			return err
		}
	}
	return nil
}
