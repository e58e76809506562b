package gpio

// FakeOutputs is a test double that records output writes.
type FakeOutputs struct {
	// Relay is the current relay state.
	Relay bool

	// Indicator is the current indicator state.
	Indicator bool

	// RelayWrites contains every value passed to SetRelay, in order.
	RelayWrites []bool

	// IndicatorWrites counts SetIndicator calls.
	IndicatorWrites int

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeOutputs creates a FakeOutputs with the relay open and indicator off.
func NewFakeOutputs() *FakeOutputs {
	return &FakeOutputs{}
}

// SetRelay records the relay write.
func (f *FakeOutputs) SetRelay(on bool) {
	f.Relay = on
	f.RelayWrites = append(f.RelayWrites, on)
}

// SetIndicator records the indicator write.
func (f *FakeOutputs) SetIndicator(on bool) {
	f.Indicator = on
	f.IndicatorWrites++
}

// Close opens the relay and marks the outputs as closed.
func (f *FakeOutputs) Close() error {
	f.Relay = false
	f.Closed = true
	return nil
}

// Reset clears recorded writes.
func (f *FakeOutputs) Reset() {
	*f = FakeOutputs{}
}
