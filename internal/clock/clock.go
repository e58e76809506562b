// Package clock abstracts wall-clock reads and cancellable sleeps so the
// control loop can run against simulated time in tests.
package clock

import (
	"context"
	"time"
)

// Clock reads the current time and suspends the caller.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, returning ctx.Err() in the latter case.
	Sleep(ctx context.Context, d time.Duration) error
}

// Real is the system clock, optionally shifted into a fixed zone.
type Real struct {
	Location *time.Location
}

// NewReal returns a Real clock reporting times at the given UTC offset.
func NewReal(utcOffset time.Duration) Real {
	return Real{Location: time.FixedZone("local", int(utcOffset.Seconds()))}
}

// Now returns the current time.
func (r Real) Now() time.Time {
	now := time.Now()
	if r.Location != nil {
		return now.In(r.Location)
	}
	return now
}

// Sleep waits for d or until ctx is done.
func (r Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
