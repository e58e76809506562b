// Package sensor provides the inside/outside temperature and humidity source
// with hardware abstraction.
package sensor

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sweeney/hotdog/internal/logic"
)

// ErrNoReading is returned when a sensor yields no usable value.
var ErrNoReading = errors.New("sensor: no reading")

// Source yields one (inside, outside, humidity) triple per conversion.
type Source interface {
	// RequestConversion starts a conversion on every sensor.
	RequestConversion() error

	// SettleDelay is the minimum wait between RequestConversion and ReadLatest.
	SettleDelay() time.Duration

	// ReadLatest returns the result of the last conversion. TakenAt is left
	// for the caller to stamp.
	ReadLatest() (logic.Sample, error)

	// Close releases sensor resources.
	Close() error
}

// Thermometer reports the controller's own temperature.
type Thermometer interface {
	ControllerTemp() (float64, error)
}

// DefaultThermalZone is where Linux exposes the SoC temperature in millidegrees.
const DefaultThermalZone = "/sys/class/thermal/thermal_zone0/temp"

// ThermalZone reads the controller temperature from a sysfs thermal zone.
type ThermalZone struct {
	Path string
}

// ControllerTemp returns the zone temperature in °C.
func (z ThermalZone) ControllerTemp() (float64, error) {
	path := z.Path
	if path == "" {
		path = DefaultThermalZone
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read thermal zone: %w", err)
	}
	return parseMilli(string(data))
}

// parseMilli converts a sysfs millidegree value ("21562\n") to °C.
func parseMilli(s string) (float64, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: parse %q: %v", ErrNoReading, strings.TrimSpace(s), err)
	}
	return float64(v) / 1000, nil
}

// CHT8305 register and conversion constants.
const (
	CHT8305Address     = 0x40
	cht8305RegTemp     = 0x00
	CHT8305SettleDelay = 100 * time.Millisecond
)

// decodeCHT8305 converts the 4-byte temperature+humidity register pair.
func decodeCHT8305(data []byte) (temp, humi float64, err error) {
	if len(data) < 4 {
		return 0, 0, fmt.Errorf("%w: short CHT8305 read (%d bytes)", ErrNoReading, len(data))
	}
	tempRaw := uint16(data[0])<<8 | uint16(data[1])
	humRaw := uint16(data[2])<<8 | uint16(data[3])
	temp = float64(tempRaw)*165/65535 - 40
	humi = float64(humRaw) / 65535 * 100
	return temp, humi, nil
}
