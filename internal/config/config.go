// Package config loads daemon settings from HOTDOG_* environment variables,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sweeney/hotdog/internal/control"
	"github.com/sweeney/hotdog/internal/gpio"
	"github.com/sweeney/hotdog/internal/logfile"
	"github.com/sweeney/hotdog/internal/logic"
	"github.com/sweeney/hotdog/internal/netconn"
	"github.com/sweeney/hotdog/internal/power"
	"github.com/sweeney/hotdog/internal/sensor"
	"github.com/sweeney/hotdog/internal/status"
)

// Prefix is prepended to every variable name.
const Prefix = "HOTDOG_"

// SuspendTimer keeps the board awake and waits on a timer instead of
// calling rtcwake.
const SuspendTimer = "timer"

var rtcwakeModes = map[string]bool{
	"standby": true,
	"freeze":  true,
	"mem":     true,
	"disk":    true,
	"off":     true,
}

// Config holds all daemon settings.
type Config struct {
	Setpoints      logic.Setpoints
	AverageReads   int
	OffInterval    time.Duration
	OnInterval     time.Duration
	SleepDuration  time.Duration
	SleepEnabled   bool
	SuspendMode    string
	ConnectTimeout time.Duration
	ConnectPoll    time.Duration

	MaxLogFiles int
	LogDir      string
	LogLevel    string
	UTCOffset   time.Duration

	WiFiSSID     string
	WiFiPassword string
	MQTTBroker   string
	HTTPAddr     string

	GPIOChip    string
	RelayPin    int
	LEDPin      int
	I2CBus      string
	I2CAddr     int
	W1Dir       string
	ThermalZone string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Setpoints:      logic.Setpoints{OutsideLow: 12, OutsideHigh: 15, InsideLow: 12, InsideHigh: 20},
		AverageReads:   control.DefaultAverageReads,
		OffInterval:    control.DefaultOffInterval,
		OnInterval:     control.DefaultOnInterval,
		SleepDuration:  power.DefaultSleepDuration,
		SleepEnabled:   true,
		SuspendMode:    SuspendTimer,
		ConnectTimeout: 30 * time.Second,
		ConnectPoll:    netconn.DefaultPollInterval,
		MaxLogFiles:    logfile.DefaultMaxFiles,
		LogDir:         "logs",
		LogLevel:       "info",
		UTCOffset:      10 * time.Hour,
		HTTPAddr:       ":8080",
		GPIOChip:       "gpiochip0",
		RelayPin:       gpio.DefaultPinRelay,
		LEDPin:         gpio.DefaultPinLED,
		I2CBus:         sensor.DefaultI2CBus,
		I2CAddr:        sensor.CHT8305Address,
		W1Dir:          sensor.DefaultW1Dir,
		ThermalZone:    sensor.DefaultThermalZone,
	}
}

// Load reads envFile (if non-empty, it must exist; if empty, a .env in the
// working directory is used when present), then overlays HOTDOG_* variables
// on the defaults. Variables already set in the process environment win over
// the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load() // ignore missing file
	}

	cfg := Default()
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	collect(intVar("OUTSIDE_TEMP_LOW", &cfg.Setpoints.OutsideLow))
	collect(intVar("OUTSIDE_TEMP_HIGH", &cfg.Setpoints.OutsideHigh))
	collect(intVar("INSIDE_TEMP_LOW", &cfg.Setpoints.InsideLow))
	collect(intVar("INSIDE_TEMP_HIGH", &cfg.Setpoints.InsideHigh))
	collect(intVar("AVERAGE_READS", &cfg.AverageReads))
	collect(durationVar("OFF_READ_INTERVAL", &cfg.OffInterval))
	collect(durationVar("ON_READ_INTERVAL", &cfg.OnInterval))
	collect(durationVar("SLEEP_DURATION", &cfg.SleepDuration))
	collect(boolVar("SLEEP_ENABLED", &cfg.SleepEnabled))
	stringVar("SUSPEND_MODE", &cfg.SuspendMode)
	collect(durationVar("CONNECT_TIMEOUT", &cfg.ConnectTimeout))
	collect(durationVar("CONNECT_POLL", &cfg.ConnectPoll))

	collect(intVar("MAX_LOG_FILES", &cfg.MaxLogFiles))
	stringVar("LOG_DIR", &cfg.LogDir)
	stringVar("LOG_LEVEL", &cfg.LogLevel)
	collect(durationVar("UTC_OFFSET", &cfg.UTCOffset))

	stringVar("WIFI_SSID", &cfg.WiFiSSID)
	stringVar("WIFI_PASSWORD", &cfg.WiFiPassword)
	stringVar("MQTT_BROKER", &cfg.MQTTBroker)
	stringVar("HTTP_ADDR", &cfg.HTTPAddr)

	stringVar("GPIO_CHIP", &cfg.GPIOChip)
	collect(intVar("RELAY_PIN", &cfg.RelayPin))
	collect(intVar("LED_PIN", &cfg.LEDPin))
	stringVar("I2C_BUS", &cfg.I2CBus)
	collect(intVar("I2C_ADDR", &cfg.I2CAddr))
	stringVar("W1_DIR", &cfg.W1Dir)
	stringVar("THERMAL_ZONE", &cfg.ThermalZone)

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that have no sensible fallback.
func (c Config) Validate() error {
	if err := c.Setpoints.Validate(); err != nil {
		return err
	}
	if c.AverageReads < 1 {
		return fmt.Errorf("invalid %sAVERAGE_READS: %d", Prefix, c.AverageReads)
	}
	if c.OffInterval <= 0 || c.OnInterval <= 0 {
		return fmt.Errorf("read intervals must be positive")
	}
	if c.MaxLogFiles < 1 {
		return fmt.Errorf("invalid %sMAX_LOG_FILES: %d", Prefix, c.MaxLogFiles)
	}
	if c.ConnectTimeout <= 0 || c.ConnectPoll <= 0 {
		return fmt.Errorf("connect timeout and poll must be positive")
	}
	if c.SleepEnabled && c.SleepDuration <= 0 {
		return fmt.Errorf("invalid %sSLEEP_DURATION: %v", Prefix, c.SleepDuration)
	}
	if c.SuspendMode != SuspendTimer && !rtcwakeModes[c.SuspendMode] {
		return fmt.Errorf("invalid %sSUSPEND_MODE: %q", Prefix, c.SuspendMode)
	}
	if c.I2CAddr < 0x03 || c.I2CAddr > 0x77 {
		return fmt.Errorf("invalid %sI2C_ADDR: %#x", Prefix, c.I2CAddr)
	}
	return nil
}

// Control returns the settings the control loop runs with.
func (c Config) Control() control.Config {
	return control.Config{
		Setpoints:    c.Setpoints,
		AverageReads: c.AverageReads,
		OffInterval:  c.OffInterval,
		OnInterval:   c.OnInterval,
	}
}

// Status returns the settings shown on the status page.
func (c Config) Status() status.Config {
	return status.Config{
		Setpoints:       c.Setpoints,
		AverageReads:    c.AverageReads,
		OffIntervalS:    int64(c.OffInterval / time.Second),
		OnIntervalS:     int64(c.OnInterval / time.Second),
		SleepS:          int64(c.SleepDuration / time.Second),
		SleepEnabled:    c.SleepEnabled,
		ConnectTimeoutS: int64(c.ConnectTimeout / time.Second),
		MaxLogFiles:     c.MaxLogFiles,
		LogDir:          c.LogDir,
		Broker:          c.MQTTBroker,
		HTTPAddr:        c.HTTPAddr,
	}
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(Prefix + name)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func stringVar(name string, dst *string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

// intVar accepts decimal, 0x hex and 0o octal.
func intVar(name string, dst *int) error {
	v, ok := lookup(name)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %q", Prefix, name, v)
	}
	*dst = int(n)
	return nil
}

// durationVar accepts Go durations ("90s", "-3h30m") or bare seconds.
func durationVar(name string, dst *time.Duration) error {
	v, ok := lookup(name)
	if !ok || v == "" {
		return nil
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		*dst = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %q", Prefix, name, v)
	}
	*dst = d
	return nil
}

func boolVar(name string, dst *bool) error {
	v, ok := lookup(name)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s%s: %q", Prefix, name, v)
	}
	*dst = b
	return nil
}
