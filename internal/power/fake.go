package power

import (
	"context"
	"time"

	"github.com/sweeney/hotdog/internal/clock"
)

// FakeSuspender advances a fake clock by Actual, regardless of the requested
// duration, to simulate early wake or drift.
type FakeSuspender struct {
	Clock *clock.Fake

	// Actual is how far the clock moves per Suspend. Zero means the requested duration.
	Actual time.Duration

	// Requested records every duration passed to Suspend.
	Requested []time.Duration

	// Err, if set, is returned after advancing the clock.
	Err error
}

// Suspend advances the clock.
func (f *FakeSuspender) Suspend(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.Requested = append(f.Requested, d)
	step := f.Actual
	if step == 0 {
		step = d
	}
	f.Clock.Advance(step)
	return f.Err
}
