//go:build linux

package gpio

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/warthog618/go-gpiocdev"
)

// RealOutputs drives outputs on actual hardware using Linux GPIO character device.
type RealOutputs struct {
	chip  *gpiocdev.Chip
	relay *gpiocdev.Line
	led   *gpiocdev.Line
}

// NewRealOutputs requests the relay and LED lines as outputs, relay open.
func NewRealOutputs(chipName string, pinRelay, pinLED int) (*RealOutputs, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	relay, err := chip.RequestLine(pinRelay, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("hotdog-relay"))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request relay pin %d: %w", pinRelay, err)
	}

	led, err := chip.RequestLine(pinLED, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("hotdog-led"))
	if err != nil {
		relay.Close()
		chip.Close()
		return nil, fmt.Errorf("request LED pin %d: %w", pinLED, err)
	}

	return &RealOutputs{
		chip:  chip,
		relay: relay,
		led:   led,
	}, nil
}

// SetRelay closes or opens the heater relay.
func (r *RealOutputs) SetRelay(on bool) {
	if err := r.relay.SetValue(boolToValue(on)); err != nil {
		log.WithError(err).Warn("gpio: set relay")
	}
}

// SetIndicator switches the status LED.
func (r *RealOutputs) SetIndicator(on bool) {
	if err := r.led.SetValue(boolToValue(on)); err != nil {
		log.WithError(err).Debug("gpio: set indicator")
	}
}

// Close de-energizes the relay, switches the LED off and releases the lines.
func (r *RealOutputs) Close() error {
	var errs []error

	if r.relay != nil {
		if err := r.relay.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("open relay: %w", err))
		}
		if err := r.relay.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close relay pin: %w", err))
		}
	}
	if r.led != nil {
		if err := r.led.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("clear LED: %w", err))
		}
		if err := r.led.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close LED pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

func boolToValue(on bool) int {
	if on {
		return 1
	}
	return 0
}
