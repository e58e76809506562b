//go:build linux

package sensor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/sweeney/hotdog/internal/logic"
)

// i2cSlave is the I2C_SLAVE ioctl request from <linux/i2c-dev.h>.
const i2cSlave = 0x0703

// DS18B20SettleDelay covers a 12-bit conversion.
const DS18B20SettleDelay = 1000 * time.Millisecond

// Defaults for a Raspberry Pi with w1-gpio and i2c-1 enabled.
const (
	DefaultW1Dir  = "/sys/bus/w1/devices"
	DefaultI2CBus = "/dev/i2c-1"
)

// RealSource reads the inside DS18B20 probe through the kernel w1-therm
// driver and the outside CHT8305 over an I2C character device.
type RealSource struct {
	bulkRead string // therm_bulk_read trigger, empty if unsupported
	probe    string // <w1dir>/28-xxxx/temperature
	i2c      *os.File
}

// NewRealSource scans w1Dir for the first DS18B20 and opens the CHT8305 at addr on bus.
func NewRealSource(w1Dir, bus string, addr int) (*RealSource, error) {
	probes, err := filepath.Glob(filepath.Join(w1Dir, "28-*"))
	if err != nil {
		return nil, fmt.Errorf("scan one-wire bus: %w", err)
	}
	if len(probes) == 0 {
		return nil, fmt.Errorf("scan one-wire bus: no DS18B20 under %s", w1Dir)
	}

	f, err := os.OpenFile(bus, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}
	if err := unix.IoctlSetInt(int(f.Fd()), i2cSlave, addr); err != nil {
		f.Close()
		return nil, fmt.Errorf("select i2c address 0x%02x: %w", addr, err)
	}

	s := &RealSource{
		probe: filepath.Join(probes[0], "temperature"),
		i2c:   f,
	}
	bulk := filepath.Join(w1Dir, "w1_bus_master1", "therm_bulk_read")
	if _, err := os.Stat(bulk); err == nil {
		s.bulkRead = bulk
	}
	return s, nil
}

// RequestConversion triggers a bulk w1 conversion and points the CHT8305 at
// its temperature register, which starts a measurement.
func (s *RealSource) RequestConversion() error {
	var errs []error
	if s.bulkRead != "" {
		if err := os.WriteFile(s.bulkRead, []byte("trigger\n"), 0); err != nil {
			errs = append(errs, fmt.Errorf("trigger w1 conversion: %w", err))
		}
	}
	if _, err := s.i2c.Write([]byte{cht8305RegTemp}); err != nil {
		errs = append(errs, fmt.Errorf("trigger CHT8305 conversion: %w", err))
	}
	return errors.Join(errs...)
}

// SettleDelay is the slower of the two sensors.
func (s *RealSource) SettleDelay() time.Duration {
	return max(DS18B20SettleDelay, CHT8305SettleDelay)
}

// ReadLatest reads both sensors. Either failing fails the whole sample.
func (s *RealSource) ReadLatest() (logic.Sample, error) {
	raw, err := os.ReadFile(s.probe)
	if err != nil {
		return logic.Sample{}, fmt.Errorf("%w: read DS18B20: %v", ErrNoReading, err)
	}
	inside, err := parseMilli(string(raw))
	if err != nil {
		return logic.Sample{}, err
	}

	buf := make([]byte, 4)
	if _, err := io.ReadFull(s.i2c, buf); err != nil {
		return logic.Sample{}, fmt.Errorf("%w: read CHT8305: %v", ErrNoReading, err)
	}
	temp, humi, err := decodeCHT8305(buf)
	if err != nil {
		return logic.Sample{}, err
	}

	return logic.Sample{
		InsideTemp:      inside,
		OutsideTemp:     temp,
		OutsideHumidity: humi,
	}, nil
}

// Close releases the I2C device.
func (s *RealSource) Close() error {
	if s.i2c == nil {
		return nil
	}
	return s.i2c.Close()
}
