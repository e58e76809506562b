// Package logic contains the pure decision logic of the enclosure thermostat.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time fields.
package logic

import (
	"errors"
	"fmt"
	"time"
)

// Mode is the thermostat state. Exactly one is active at any time.
type Mode string

const (
	ModeOff Mode = "OFF"
	ModeOn  Mode = "ON"
)

// HeaterOn reports whether the relay is closed in this mode.
func (m Mode) HeaterOn() bool {
	return m == ModeOn
}

// Sample is a single instantaneous reading of all three sensors.
type Sample struct {
	InsideTemp      float64 // °C
	OutsideTemp     float64 // °C
	OutsideHumidity float64 // %RH
	TakenAt         time.Time
}

// Means holds the truncated integer means of one averaging window.
type Means struct {
	InsideTemp      int
	OutsideTemp     int
	OutsideHumidity int
}

// Readings is the (inside, outside, humidity) triple carried by a Record.
// It holds either instantaneous values or window means.
type Readings struct {
	InsideTemp      float64
	OutsideTemp     float64
	OutsideHumidity float64
}

// ReadingsOf returns the readings of a raw sample.
func ReadingsOf(s Sample) Readings {
	return Readings{
		InsideTemp:      s.InsideTemp,
		OutsideTemp:     s.OutsideTemp,
		OutsideHumidity: s.OutsideHumidity,
	}
}

// Readings returns the means as a Readings value.
func (m Means) Readings() Readings {
	return Readings{
		InsideTemp:      float64(m.InsideTemp),
		OutsideTemp:     float64(m.OutsideTemp),
		OutsideHumidity: float64(m.OutsideHumidity),
	}
}

// Record is one row of the daily log. Append-only.
type Record struct {
	Timestamp      time.Time
	Readings       Readings
	HeaterOn       bool
	SleepDuration  time.Duration
	ControllerTemp float64
}

// ErrInvalidSetpoints is returned when a hysteresis band is degenerate.
var ErrInvalidSetpoints = errors.New("invalid setpoints")

// Setpoints is the immutable hysteresis configuration, in whole °C.
type Setpoints struct {
	OutsideLow  int
	OutsideHigh int
	InsideLow   int
	InsideHigh  int
}

// Validate checks that both bands are non-degenerate.
func (s Setpoints) Validate() error {
	if s.OutsideLow >= s.OutsideHigh {
		return fmt.Errorf("%w: outside low %d must be below outside high %d", ErrInvalidSetpoints, s.OutsideLow, s.OutsideHigh)
	}
	if s.InsideLow >= s.InsideHigh {
		return fmt.Errorf("%w: inside low %d must be below inside high %d", ErrInvalidSetpoints, s.InsideLow, s.InsideHigh)
	}
	return nil
}
