package sensor

import (
	"errors"
	"time"

	"github.com/sweeney/hotdog/internal/logic"
)

// FakeSource is a test double that returns scripted samples.
type FakeSource struct {
	// Samples contains scripted readings to return.
	// Each call to ReadLatest() consumes the next sample.
	Samples []logic.Sample

	// Errors, if non-nil at an index, is returned instead of Samples at that index.
	Errors []error

	// Delay is reported by SettleDelay.
	Delay time.Duration

	index int

	// Requests counts RequestConversion calls.
	Requests int

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeSource creates a FakeSource with the given samples.
func NewFakeSource(samples []logic.Sample) *FakeSource {
	return &FakeSource{Samples: samples, Delay: CHT8305SettleDelay}
}

// RequestConversion counts the request.
func (f *FakeSource) RequestConversion() error {
	f.Requests++
	return nil
}

// SettleDelay returns the configured delay.
func (f *FakeSource) SettleDelay() time.Duration {
	return f.Delay
}

// ReadLatest returns the next scripted sample.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeSource) ReadLatest() (logic.Sample, error) {
	if len(f.Samples) == 0 {
		return logic.Sample{}, errors.New("no samples configured")
	}

	i := f.index
	if f.index < len(f.Samples)-1 {
		f.index++
	}

	if i < len(f.Errors) && f.Errors[i] != nil {
		return logic.Sample{}, f.Errors[i]
	}
	return f.Samples[i], nil
}

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}

// FakeThermometer returns a fixed controller temperature.
type FakeThermometer struct {
	Temp float64
	Err  error
}

// ControllerTemp returns the configured value.
func (f FakeThermometer) ControllerTemp() (float64, error) {
	return f.Temp, f.Err
}
