package netconn

// FakeRadio is a test double that returns scripted status codes.
type FakeRadio struct {
	// Statuses contains scripted values returned by Status().
	// Each call consumes the next value; the last one repeats.
	Statuses []Status

	index int

	// Enabled is the current power state.
	Enabled bool

	// EnableCalls records every SetEnabled value, in order.
	EnableCalls []bool

	// ConnectCalls counts Connect calls.
	ConnectCalls int

	// SSID and Password are the last credentials passed to Connect.
	SSID     string
	Password string

	// StatusError, if set, is returned by Status().
	StatusError error
}

// NewFakeRadio creates a FakeRadio with the given status script.
func NewFakeRadio(statuses ...Status) *FakeRadio {
	return &FakeRadio{Statuses: statuses}
}

// SetEnabled records the power state.
func (f *FakeRadio) SetEnabled(on bool) error {
	f.Enabled = on
	f.EnableCalls = append(f.EnableCalls, on)
	return nil
}

// Connect records the credentials.
func (f *FakeRadio) Connect(ssid, password string) error {
	f.ConnectCalls++
	f.SSID = ssid
	f.Password = password
	return nil
}

// Status returns the next scripted status, or StatusIdle with no script.
func (f *FakeRadio) Status() (Status, error) {
	if f.StatusError != nil {
		return StatusIdle, f.StatusError
	}
	if len(f.Statuses) == 0 {
		return StatusIdle, nil
	}
	s := f.Statuses[f.index]
	if f.index < len(f.Statuses)-1 {
		f.index++
	}
	return s, nil
}

// Polls returns how many scripted statuses have been consumed.
func (f *FakeRadio) Polls() int {
	return f.index
}
