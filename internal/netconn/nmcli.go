package netconn

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// NMCLI drives the WiFi radio through NetworkManager's command line client.
type NMCLI struct {
	// Bin is the nmcli executable, "nmcli" if empty.
	Bin string

	// CommandTimeout bounds each short nmcli invocation.
	CommandTimeout time.Duration

	mu      sync.Mutex
	pending bool
	result  error
}

func (n *NMCLI) bin() string {
	if n.Bin == "" {
		return "nmcli"
	}
	return n.Bin
}

func (n *NMCLI) run(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, n.bin(), args...).CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("nmcli %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

func (n *NMCLI) short() (context.Context, context.CancelFunc) {
	d := n.CommandTimeout
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), d)
}

// SetEnabled switches the WiFi radio.
func (n *NMCLI) SetEnabled(on bool) error {
	state := "off"
	if on {
		state = "on"
	}
	ctx, cancel := n.short()
	defer cancel()
	_, err := n.run(ctx, "radio", "wifi", state)
	return err
}

// Connect starts association in the background; Status reports the result.
func (n *NMCLI) Connect(ssid, password string) error {
	if ssid == "" {
		return fmt.Errorf("nmcli: no SSID configured")
	}
	n.mu.Lock()
	if n.pending {
		n.mu.Unlock()
		return nil
	}
	n.pending = true
	n.result = nil
	n.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		args := []string{"device", "wifi", "connect", ssid}
		if password != "" {
			args = append(args, "password", password)
		}
		_, err := n.run(ctx, args...)

		n.mu.Lock()
		n.pending = false
		n.result = err
		n.mu.Unlock()
	}()
	return nil
}

// Status maps the NetworkManager state and the last connect result to a Status.
func (n *NMCLI) Status() (Status, error) {
	n.mu.Lock()
	pending, result := n.pending, n.result
	n.mu.Unlock()

	if !pending && result != nil {
		return statusFromConnectError(result), nil
	}

	ctx, cancel := n.short()
	defer cancel()
	out, err := n.run(ctx, "-t", "-f", "STATE", "general")
	if err != nil {
		return StatusIdle, err
	}
	return statusFromState(out, pending), nil
}

func statusFromState(out string, pending bool) Status {
	state := strings.TrimSpace(out)
	switch {
	case state == "connected" || strings.HasPrefix(state, "connected "):
		return StatusGotIP
	case state == "connecting" || pending:
		return StatusConnecting
	default:
		return StatusIdle
	}
}

func statusFromConnectError(err error) Status {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "secrets were required"), strings.Contains(msg, "invalid password"):
		return StatusWrongPassword
	case strings.Contains(msg, "no network with ssid"):
		return StatusNoAPFound
	default:
		return StatusConnectFail
	}
}
