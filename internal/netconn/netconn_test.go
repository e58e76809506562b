package netconn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/hotdog/internal/clock"
)

var testStart = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestSupervisor(radio Radio) (*Supervisor, *clock.Fake) {
	clk := clock.NewFake(testStart)
	creds := Credentials{SSID: "enclosure", Password: "hunter2"}
	return NewSupervisor(radio, clk, creds, time.Second, 30*time.Second), clk
}

func TestConnectTimesOut(t *testing.T) {
	radio := NewFakeRadio(StatusIdle, StatusConnecting)
	s, clk := newTestSupervisor(radio)

	a := s.Connect(context.Background(), 10*time.Second)
	if a.Outcome != TimedOut {
		t.Fatalf("outcome: got %s, want TIMED_OUT", a.Outcome)
	}
	if got := clk.Now().Sub(testStart); got != 10*time.Second {
		t.Errorf("elapsed simulated time: got %v, want 10s", got)
	}
	if a.LastStatus != StatusConnecting {
		t.Errorf("LastStatus: got %s, want connecting", a.LastStatus)
	}
	if a.Timeout != 10*time.Second || !a.StartedAt.Equal(testStart) {
		t.Errorf("unexpected attempt bookkeeping: %+v", a)
	}
}

func TestConnectReturnsAsSoonAsConnected(t *testing.T) {
	// initial check, then three polls connecting, then got IP
	radio := NewFakeRadio(StatusIdle, StatusConnecting, StatusConnecting, StatusConnecting, StatusGotIP)
	s, clk := newTestSupervisor(radio)

	a := s.Connect(context.Background(), 10*time.Second)
	if a.Outcome != Connected {
		t.Fatalf("outcome: got %s, want CONNECTED", a.Outcome)
	}
	if got := clk.Now().Sub(testStart); got != 3*time.Second {
		t.Errorf("returned after %v, want 3s", got)
	}
	if radio.ConnectCalls != 1 {
		t.Errorf("ConnectCalls: got %d, want 1", radio.ConnectCalls)
	}
	if radio.SSID != "enclosure" || radio.Password != "hunter2" {
		t.Errorf("credentials not passed: %q/%q", radio.SSID, radio.Password)
	}
}

func TestConnectAlreadyConnected(t *testing.T) {
	radio := NewFakeRadio(StatusGotIP)
	s, _ := newTestSupervisor(radio)

	a := s.Connect(context.Background(), 10*time.Second)
	if a.Outcome != Connected {
		t.Fatalf("outcome: got %s, want CONNECTED", a.Outcome)
	}
	if radio.ConnectCalls != 0 {
		t.Errorf("expected no Connect call when already associated, got %d", radio.ConnectCalls)
	}
}

func TestConnectAuthFailed(t *testing.T) {
	radio := NewFakeRadio(StatusIdle, StatusConnecting, StatusWrongPassword)
	s, clk := newTestSupervisor(radio)

	a := s.Connect(context.Background(), 10*time.Second)
	if a.Outcome != AuthFailed {
		t.Fatalf("outcome: got %s, want AUTH_FAILED", a.Outcome)
	}
	if got := clk.Now().Sub(testStart); got != time.Second {
		t.Errorf("returned after %v, want 1s", got)
	}
}

func TestConnectTransientFailuresKeepPolling(t *testing.T) {
	radio := NewFakeRadio(StatusIdle, StatusNoAPFound, StatusConnectFail, StatusGotIP)
	s, _ := newTestSupervisor(radio)

	a := s.Connect(context.Background(), 10*time.Second)
	if a.Outcome != Connected {
		t.Fatalf("outcome: got %s, want CONNECTED", a.Outcome)
	}
}

func TestConnectStatusErrorsTimeOut(t *testing.T) {
	radio := NewFakeRadio()
	radio.StatusError = errors.New("radio gone")
	s, _ := newTestSupervisor(radio)

	a := s.Connect(context.Background(), 5*time.Second)
	if a.Outcome != TimedOut {
		t.Fatalf("outcome: got %s, want TIMED_OUT", a.Outcome)
	}
}

func TestConnectCancelled(t *testing.T) {
	radio := NewFakeRadio(StatusConnecting)
	s, _ := newTestSupervisor(radio)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := s.Connect(ctx, time.Hour)
	if a.Outcome != TimedOut {
		t.Fatalf("outcome: got %s, want TIMED_OUT", a.Outcome)
	}
}

func TestEnableDisable(t *testing.T) {
	radio := NewFakeRadio(StatusGotIP)
	s, _ := newTestSupervisor(radio)

	if err := s.Disable(); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	a := s.Enable(context.Background())
	if a.Outcome != Connected {
		t.Errorf("outcome: got %s, want CONNECTED", a.Outcome)
	}
	if len(radio.EnableCalls) != 2 || radio.EnableCalls[0] != false || radio.EnableCalls[1] != true {
		t.Errorf("EnableCalls: got %v, want [false true]", radio.EnableCalls)
	}
	if a.Timeout != 30*time.Second {
		t.Errorf("Enable should use default timeout, got %v", a.Timeout)
	}
}

func TestStatusString(t *testing.T) {
	tests := map[Status]string{
		StatusIdle:          "idle",
		StatusConnecting:    "connecting",
		StatusGotIP:         "got_ip",
		StatusConnectFail:   "connect_fail",
		StatusNoAPFound:     "no_ap_found",
		StatusWrongPassword: "wrong_password",
		Status(42):          "unknown",
	}
	for s, want := range tests {
		if s.String() != want {
			t.Errorf("Status(%d): got %q, want %q", int(s), s.String(), want)
		}
	}
}

func TestStatusFromState(t *testing.T) {
	tests := []struct {
		out     string
		pending bool
		want    Status
	}{
		{"connected\n", false, StatusGotIP},
		{"connected (site only)\n", false, StatusGotIP},
		{"connecting\n", false, StatusConnecting},
		{"disconnected\n", true, StatusConnecting},
		{"disconnected\n", false, StatusIdle},
		{"asleep\n", false, StatusIdle},
	}
	for _, tt := range tests {
		if got := statusFromState(tt.out, tt.pending); got != tt.want {
			t.Errorf("statusFromState(%q, %v): got %s, want %s", tt.out, tt.pending, got, tt.want)
		}
	}
}

func TestStatusFromConnectError(t *testing.T) {
	tests := []struct {
		msg  string
		want Status
	}{
		{"Error: Connection activation failed: Secrets were required, but not provided.", StatusWrongPassword},
		{"Error: No network with SSID 'enclosure' found.", StatusNoAPFound},
		{"Error: Connection activation failed: (53) The Wi-Fi network could not be found", StatusConnectFail},
	}
	for _, tt := range tests {
		if got := statusFromConnectError(errors.New(tt.msg)); got != tt.want {
			t.Errorf("%q: got %s, want %s", tt.msg, got, tt.want)
		}
	}
}
