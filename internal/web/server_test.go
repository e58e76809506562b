package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/hotdog/internal/logfile"
	"github.com/sweeney/hotdog/internal/logic"
	"github.com/sweeney/hotdog/internal/status"
)

var start = time.Date(2026, 1, 14, 6, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, logs LogFiles) (*httptest.Server, *status.Tracker) {
	t.Helper()
	cfg := status.Config{
		Setpoints:    logic.Setpoints{OutsideLow: 12, OutsideHigh: 15, InsideLow: 12, InsideHigh: 20},
		AverageReads: 4,
		OffIntervalS: 60,
		OnIntervalS:  30,
		SleepS:       900,
		SleepEnabled: true,
		MaxLogFiles:  14,
		LogDir:       "logs",
		Broker:       "tcp://192.168.1.200:1883",
		HTTPAddr:     ":8080",
	}
	tr := status.NewTracker(start, "sess-1", cfg)
	srv := New(":0", tr, logs)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, tr
}

func getJSON(t *testing.T, url string) status.StatusJSON {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	return sj
}

func TestJSONEndpoint(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.SetMode(logic.ModeOff)
	tr.SetMode(logic.ModeOn)
	tr.RecordWritten(logic.Record{
		Timestamp: start,
		Readings:  logic.Readings{InsideTemp: 11, OutsideTemp: 9, OutsideHumidity: 80},
		HeaterOn:  true,
	})
	tr.SetMQTTConnected(true)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj status.StatusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.Status.Mode != "ON" {
		t.Errorf("Mode: got %q, want ON", sj.Status.Mode)
	}
	if sj.Status.Last == nil || sj.Status.Last.InsideTemp != 11 || !sj.Status.Last.HeaterOn {
		t.Errorf("Last: got %+v", sj.Status.Last)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if sj.Status.Counts.Transitions != 1 {
		t.Errorf("Counts.Transitions: got %d, want 1", sj.Status.Counts.Transitions)
	}
	if sj.Status.Config.Setpoints.InsideHigh != 20 {
		t.Errorf("Config.Setpoints.InsideHigh: got %d, want 20", sj.Status.Config.Setpoints.InsideHigh)
	}
	if sj.Status.Session != "sess-1" {
		t.Errorf("Session: got %q", sj.Status.Session)
	}
}

func TestJSONUnknownModeBeforeStart(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Mode != "UNKNOWN" {
		t.Errorf("Mode before start: got %q, want UNKNOWN", sj.Status.Mode)
	}
	if sj.Status.Last != nil {
		t.Errorf("expected no last record, got %+v", sj.Status.Last)
	}
}

func TestJSONNetworkInfo(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.SetConnect(status.ConnectInfo{Outcome: "AUTH_FAILED", Status: "WRONG_PASSWORD", At: start})

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if sj.Status.Network.Outcome != "AUTH_FAILED" {
		t.Errorf("Network.Outcome: got %q, want AUTH_FAILED", sj.Status.Network.Outcome)
	}
}

func TestHTMLEndpointRoot(t *testing.T) {
	ts, tr := newTestServer(t, nil)
	tr.SetMode(logic.ModeOn)
	tr.RecordWritten(logic.Record{
		Timestamp:     start,
		Readings:      logic.Readings{InsideTemp: 13.4, OutsideTemp: 10.2, OutsideHumidity: 77.7},
		SleepDuration: 894 * time.Second,
	})

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	for _, want := range []string{`class="on">ON`, "13.4", "slept 894s", "OFF &ge; 20"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("page missing %q", want)
		}
	}
}

func TestHTMLEndpointIndexHTML(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/index.html")
	if err != nil {
		t.Fatalf("GET /index.html: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "none yet") {
		t.Error("expected placeholder before the first record")
	}
}

func TestNotFoundForUnknownPath(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/nonexistent")
	if err != nil {
		t.Fatalf("GET /nonexistent: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestLogsDisabledWithoutManager(t *testing.T) {
	ts, _ := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/logs")
	if err != nil {
		t.Fatalf("GET /logs: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}

func TestLogListAndDownload(t *testing.T) {
	m := logfile.NewManager(t.TempDir(), 14)
	rec := logic.Record{Timestamp: start, Readings: logic.Readings{InsideTemp: 15, OutsideTemp: 12, OutsideHumidity: 60}}
	if err := m.Write(rec); err != nil {
		t.Fatalf("Write: %v", err)
	}
	ts, _ := newTestServer(t, m)

	resp, err := http.Get(ts.URL + "/logs")
	if err != nil {
		t.Fatalf("GET /logs: %v", err)
	}
	var list struct {
		Files []string `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if len(list.Files) != 1 || list.Files[0] != "hotdog_20260114.csv" {
		t.Fatalf("files: got %v", list.Files)
	}

	resp, err = http.Get(ts.URL + "/logs/hotdog_20260114.csv")
	if err != nil {
		t.Fatalf("GET log file: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), logfile.Header+"\n") {
		t.Errorf("download should start with the header, got %q", body)
	}
}

func TestLogDownloadRejectsUnknownNames(t *testing.T) {
	ts, _ := newTestServer(t, logfile.NewManager(t.TempDir(), 14))

	for _, name := range []string{"hotdog_20260101.csv", "notes.txt"} {
		resp, err := http.Get(ts.URL + "/logs/" + name)
		if err != nil {
			t.Fatalf("GET %s: %v", name, err)
		}
		resp.Body.Close()
		if resp.StatusCode != 404 {
			t.Errorf("%s: got %d, want 404", name, resp.StatusCode)
		}
	}
}

func TestStateChangesReflectedInResponse(t *testing.T) {
	ts, tr := newTestServer(t, nil)

	if sj := getJSON(t, ts.URL+"/index.json"); sj.Status.MQTT.Connected {
		t.Error("expected MQTT disconnected initially")
	}

	tr.SetMode(logic.ModeOff)
	tr.SetMQTTConnected(true)

	sj := getJSON(t, ts.URL+"/index.json")
	if sj.Status.Mode != "OFF" {
		t.Errorf("Mode: got %q, want OFF", sj.Status.Mode)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected MQTT connected after update")
	}
}
