// Package gpio drives the relay and status indicator outputs with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Outputs drives the heater relay and the status indicator.
// Writes are fire-and-forget and assumed to succeed.
type Outputs interface {
	// SetRelay closes (true) or opens (false) the heater relay.
	SetRelay(on bool)

	// SetIndicator switches the status LED.
	SetIndicator(on bool)

	// Close opens the relay and releases GPIO resources.
	Close() error
}

// Pin defaults (line offsets on gpiochip0)
const (
	DefaultPinRelay = 5
	DefaultPinLED   = 8
)
