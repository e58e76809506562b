//go:build !linux

package gpio

import "errors"

// RealOutputs is not available on non-Linux platforms.
type RealOutputs struct{}

// NewRealOutputs returns an error on non-Linux platforms.
func NewRealOutputs(chipName string, pinRelay, pinLED int) (*RealOutputs, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// SetRelay is a no-op on non-Linux platforms.
func (r *RealOutputs) SetRelay(on bool) {}

// SetIndicator is a no-op on non-Linux platforms.
func (r *RealOutputs) SetIndicator(on bool) {}

// Close is not implemented on non-Linux platforms.
func (r *RealOutputs) Close() error {
	return nil
}
