//go:build !linux

package sensor

import (
	"errors"
	"time"

	"github.com/sweeney/hotdog/internal/logic"
)

// Defaults for a Raspberry Pi with w1-gpio and i2c-1 enabled.
const (
	DefaultW1Dir  = "/sys/bus/w1/devices"
	DefaultI2CBus = "/dev/i2c-1"
)

// RealSource is not available on non-Linux platforms.
type RealSource struct{}

// NewRealSource returns an error on non-Linux platforms.
func NewRealSource(w1Dir, bus string, addr int) (*RealSource, error) {
	return nil, errors.New("sensor: not supported on this platform (requires Linux)")
}

// RequestConversion is not implemented on non-Linux platforms.
func (s *RealSource) RequestConversion() error {
	return errors.New("sensor: not supported")
}

// SettleDelay is zero on non-Linux platforms.
func (s *RealSource) SettleDelay() time.Duration { return 0 }

// ReadLatest is not implemented on non-Linux platforms.
func (s *RealSource) ReadLatest() (logic.Sample, error) {
	return logic.Sample{}, ErrNoReading
}

// Close is not implemented on non-Linux platforms.
func (s *RealSource) Close() error {
	return nil
}
