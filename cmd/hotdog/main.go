// Command hotdog runs the enclosure thermostat: it samples the inside and
// outside sensors, drives the heater relay through a hysteresis band, and
// logs every sample to rotating daily CSV files.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/sweeney/hotdog/internal/clock"
	"github.com/sweeney/hotdog/internal/config"
	"github.com/sweeney/hotdog/internal/control"
	"github.com/sweeney/hotdog/internal/gpio"
	"github.com/sweeney/hotdog/internal/logfile"
	"github.com/sweeney/hotdog/internal/mqtt"
	"github.com/sweeney/hotdog/internal/netconn"
	"github.com/sweeney/hotdog/internal/power"
	"github.com/sweeney/hotdog/internal/sensor"
	"github.com/sweeney/hotdog/internal/status"
	"github.com/sweeney/hotdog/internal/web"
)

func main() {
	envFile := flag.String("env", "", "Path to a .env file (default: ./.env if present)")
	readOnce := flag.Bool("read", false, "Print one sensor sample and exit")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	setupLogging(cfg.LogLevel)

	if err := run(cfg, *readOnce); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func setupLogging(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.WithFields(log.Fields{"level": level, "valid": levelNames()}).Warn("unknown log level, using info")
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// shutdownSignal is the cancellation cause recorded when a signal arrives.
type shutdownSignal struct{ sig os.Signal }

func (s shutdownSignal) Error() string { return "received " + s.sig.String() }

func run(cfg config.Config, readOnce bool) error {
	clk := clock.NewReal(cfg.UTCOffset)
	thermometer := sensor.ThermalZone{Path: cfg.ThermalZone}

	source, err := sensor.NewRealSource(cfg.W1Dir, cfg.I2CBus, cfg.I2CAddr)
	if err != nil {
		return fmt.Errorf("init sensors: %w", err)
	}
	defer source.Close()

	if readOnce {
		return printSample(context.Background(), os.Stdout, source, thermometer, clk)
	}

	outputs, err := gpio.NewRealOutputs(cfg.GPIOChip, cfg.RelayPin, cfg.LEDPin)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer outputs.Close()
	outputs.SetRelay(false)

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		if s, ok := <-sigCh; ok {
			log.WithField("signal", s).Info("shutting down")
			cancel(shutdownSignal{s})
		}
	}()

	session := uuid.NewString()
	publisher, mqttStatus := newPublisher(cfg.MQTTBroker, session)
	defer publisher.Close()

	tracker := status.NewTracker(clk.Now(), session, cfg.Status())

	var network power.Network
	if cfg.WiFiSSID != "" {
		supervisor := netconn.NewSupervisor(&netconn.NMCLI{}, clk,
			netconn.Credentials{SSID: cfg.WiFiSSID, Password: cfg.WiFiPassword},
			cfg.ConnectPoll, cfg.ConnectTimeout)
		tn := &trackedNetwork{supervisor: supervisor, tracker: tracker, clock: clk}
		tn.Enable(ctx)
		network = tn
	}

	tracker.SetMQTTConnected(mqttStatus.IsConnected())
	publishLifecycle(publisher, tracker, mqtt.EventStartup, "")

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, logfile.NewManager(cfg.LogDir, cfg.MaxLogFiles))
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("http server")
			}
		}()
		defer srv.Shutdown(context.Background())
		log.WithField("addr", cfg.HTTPAddr).Info("http status server listening")
	}

	deps := control.Deps{
		Source:      source,
		Thermometer: thermometer,
		Outputs:     outputs,
		Clock:       clk,
		Recorder: &control.Fanout{
			Log:       logfile.NewManager(cfg.LogDir, cfg.MaxLogFiles),
			Publisher: publisher,
			MQTT:      mqttStatus,
			Tracker:   tracker,
			Session:   session,
		},
	}
	if cfg.SleepEnabled {
		deps.Sleeper = power.NewManager(clk, newSuspender(cfg.SuspendMode, clk), network, cfg.SleepDuration)
	}

	sched, err := control.NewScheduler(cfg.Control(), deps)
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"session":   session,
		"setpoints": fmt.Sprintf("%+v", cfg.Setpoints),
		"average":   cfg.AverageReads,
		"sleep":     cfg.SleepEnabled,
		"log_dir":   cfg.LogDir,
	}).Info("started")

	runErr := sched.Run(ctx)

	outputs.SetRelay(false)
	reason := shutdownReason(context.Cause(ctx), runErr)
	tracker.SetMQTTConnected(mqttStatus.IsConnected())
	publishLifecycle(publisher, tracker, mqtt.EventShutdown, reason)
	return runErr
}

// shutdownReason names why the control loop stopped.
func shutdownReason(cause, runErr error) string {
	if runErr != nil {
		return "FAULT"
	}
	var sig shutdownSignal
	if errors.As(cause, &sig) {
		switch sig.sig {
		case syscall.SIGINT:
			return "SIGINT"
		case syscall.SIGTERM:
			return "SIGTERM"
		}
	}
	return "UNKNOWN"
}

func publishLifecycle(publisher mqtt.Publisher, tracker *status.Tracker, event, reason string) {
	snap := tracker.Snapshot()
	ev := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Session:    snap.Session,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	}
	if err := publisher.PublishSystem(ev); err != nil {
		log.WithError(err).WithField("event", event).Warn("failed to publish system event")
		return
	}
	log.WithField("event", event).Info("published system event")
}

// client is the part of the MQTT client main needs.
type client interface {
	mqtt.Publisher
	mqtt.ConnectionStatus
}

func newPublisher(broker, session string) (mqtt.Publisher, mqtt.ConnectionStatus) {
	var p client = mqtt.NopPublisher{}
	if broker != "" {
		p = mqtt.NewRealPublisher(broker, "hotdog-"+session[:8], session)
	} else {
		log.Info("mqtt disabled")
	}
	return p, p
}

func newSuspender(mode string, clk clock.Clock) power.Suspender {
	timer := power.TimerSuspender{Clock: clk}
	if mode == config.SuspendTimer || mode == "" {
		return timer
	}
	return power.RTCWakeSuspender{Mode: mode, Fallback: timer}
}

// trackedNetwork records every connection attempt in the status tracker.
type trackedNetwork struct {
	supervisor *netconn.Supervisor
	tracker    *status.Tracker
	clock      clock.Clock
}

func (n *trackedNetwork) Disable() error {
	return n.supervisor.Disable()
}

func (n *trackedNetwork) Enable(ctx context.Context) netconn.Attempt {
	a := n.supervisor.Enable(ctx)
	n.tracker.SetConnect(status.ConnectInfo{
		Outcome: string(a.Outcome),
		Status:  a.LastStatus.String(),
		At:      n.clock.Now(),
	})
	return a
}

// printSample takes one reading the same way the control loop does.
func printSample(ctx context.Context, w io.Writer, src sensor.Source, th sensor.Thermometer, clk clock.Clock) error {
	if err := src.RequestConversion(); err != nil {
		return fmt.Errorf("request conversion: %w", err)
	}
	if err := clk.Sleep(ctx, src.SettleDelay()); err != nil {
		return err
	}
	s, err := src.ReadLatest()
	if err != nil {
		return fmt.Errorf("read sensors: %w", err)
	}
	cpu, err := th.ControllerTemp()
	if err != nil {
		cpu = 0
	}
	fmt.Fprintf(w, "%s inside=%.1f outside=%.1f humidity=%.1f cpu=%.1f\n",
		clk.Now().Format("20060102-150405"), s.InsideTemp, s.OutsideTemp, s.OutsideHumidity, cpu)
	return nil
}

// levelNames lists the accepted log levels for HOTDOG_LOG_LEVEL.
func levelNames() string {
	names := make([]string, 0, len(log.AllLevels))
	for _, l := range log.AllLevels {
		names = append(names, l.String())
	}
	return strings.Join(names, ", ")
}
