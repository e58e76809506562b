package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/hotdog/internal/logic"
)

func testRecord() logic.Record {
	return logic.Record{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Readings: logic.Readings{
			InsideTemp:      13.46,
			OutsideTemp:     -1.04,
			OutsideHumidity: 88.56,
		},
		HeaterOn:       true,
		SleepDuration:  0,
		ControllerTemp: 41.2,
	}
}

func TestFormatPayload(t *testing.T) {
	payload, err := FormatPayload(testRecord(), logic.ModeOn, "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	p := parsed.Hotdog
	if p.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", p.Timestamp)
	}
	if p.Mode != "ON" {
		t.Errorf("unexpected mode: %s", p.Mode)
	}
	if p.Session != "abc" {
		t.Errorf("unexpected session: %s", p.Session)
	}
	if p.InsideTemp != 13.5 || p.OutsideTemp != -1.0 || p.OutsideHumidity != 88.6 {
		t.Errorf("readings not rounded to one decimal: %+v", p)
	}
	if !p.HeaterOn {
		t.Error("expected heater_on=true")
	}
	if p.ControllerTemp != 41.2 {
		t.Errorf("unexpected controller temp: %v", p.ControllerTemp)
	}
}

func TestFormatPayloadSleepSeconds(t *testing.T) {
	rec := testRecord()
	rec.SleepDuration = 894*time.Second + 900*time.Millisecond

	payload, err := FormatPayload(rec, logic.ModeOff, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var parsed Payload
	json.Unmarshal(payload, &parsed)
	if parsed.Hotdog.SleepSeconds != 894 {
		t.Errorf("sleep_seconds: got %d, want 894", parsed.Hotdog.SleepSeconds)
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	rec := testRecord()
	rec.Timestamp = time.Date(2026, 2, 3, 8, 18, 12, 0, time.FixedZone("AEST", 10*60*60))

	payload, _ := FormatPayload(rec, logic.ModeOn, "")
	var parsed Payload
	json.Unmarshal(payload, &parsed)
	if parsed.Hotdog.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("expected UTC timestamp, got %s", parsed.Hotdog.Timestamp)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Event:     EventMode,
		Mode:      logic.ModeOn,
	}
	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"system":{"timestamp":"2026-01-01T00:00:00Z","event":"MODE","mode":"ON"}}`
	if string(payload) != want {
		t.Errorf("payload:\n got %s\nwant %s", payload, want)
	}
}

func TestFormatSystemPayloadShutdownReason(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Event:     EventShutdown,
		Reason:    "SIGTERM",
		Session:   "s1",
	}
	payload, _ := FormatSystemPayload(event)
	want := `{"system":{"timestamp":"2026-01-01T00:00:00Z","event":"SHUTDOWN","reason":"SIGTERM","session":"s1"}}`
	if string(payload) != want {
		t.Errorf("payload:\n got %s\nwant %s", payload, want)
	}
}

func TestWillPayloadHasNoTimestamp(t *testing.T) {
	want := `{"system":{"event":"OFFLINE","session":"s1"}}`
	if got := string(WillPayload("s1")); got != want {
		t.Errorf("will payload:\n got %s\nwant %s", got, want)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"status":{}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: EventStartup, RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", payload)
	}
}

func TestTopics(t *testing.T) {
	if Topic != "hotdog/thermostat/telemetry" {
		t.Errorf("unexpected topic: %s", Topic)
	}
	if TopicSystem != "hotdog/thermostat/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	if err := f.Publish(testRecord(), logic.ModeOn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Records) != 1 || len(f.Payloads) != 1 || len(f.Modes) != 1 {
		t.Fatalf("expected 1 record, got %d/%d/%d", len(f.Records), len(f.Payloads), len(f.Modes))
	}
	if f.Modes[0] != logic.ModeOn {
		t.Errorf("unexpected mode: %s", f.Modes[0])
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishError = errors.New("simulated error")

	if err := f.Publish(testRecord(), logic.ModeOn); err == nil {
		t.Error("expected error")
	}
	if len(f.Records) != 0 {
		t.Errorf("expected no records on error, got %d", len(f.Records))
	}
}

func TestFakePublisherSystemEvents(t *testing.T) {
	f := NewFakePublisher()
	f.PublishSystem(SystemEvent{Event: EventStartup})
	f.PublishSystem(SystemEvent{Event: EventMode, Mode: logic.ModeOn})
	f.PublishSystem(SystemEvent{Event: EventShutdown})

	names := f.EventNames()
	want := []string{EventStartup, EventMode, EventShutdown}
	if len(names) != len(want) {
		t.Fatalf("expected %d events, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("event %d: got %s, want %s", i, names[i], want[i])
		}
	}

	f.PublishSystemError = errors.New("broker down")
	if err := f.PublishSystem(SystemEvent{Event: EventMode}); err == nil {
		t.Error("expected error")
	}
	if len(f.SystemEvents) != 3 {
		t.Errorf("failed publish should not be recorded, got %d", len(f.SystemEvents))
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(testRecord(), logic.ModeOff)
	f.PublishSystem(SystemEvent{Event: EventStartup})
	f.Close()
	f.Connected = true

	f.Reset()

	if len(f.Records) != 0 || len(f.SystemEvents) != 0 || f.Closed || f.Connected {
		t.Error("expected zero state after Reset")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(testRecord(), logic.ModeOn); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := p.PublishSystem(SystemEvent{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if (NopPublisher{}).IsConnected() {
		t.Error("NopPublisher should never report connected")
	}
}
