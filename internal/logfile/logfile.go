// Package logfile writes thermostat records to one CSV file per calendar day
// and prunes old days.
package logfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/hotdog/internal/logic"
)

// Header is the first line of every daily file.
const Header = "Timestamp,InsideTemp,OutsideTemp,OutsideHumi,HeaterOn,SleepDuration,CPUTemp"

const (
	filePrefix      = "hotdog_"
	fileSuffix      = ".csv"
	dateLayout      = "20060102"
	timestampLayout = "20060102-150405"
)

// DefaultMaxFiles is the number of daily files kept.
const DefaultMaxFiles = 14

// FileName returns the daily file name for t, e.g. hotdog_20260114.csv.
func FileName(t time.Time) string {
	return filePrefix + t.Format(dateLayout) + fileSuffix
}

// FormatRecord renders one CSV data row (without newline).
func FormatRecord(r logic.Record) string {
	heater := 0
	if r.HeaterOn {
		heater = 1
	}
	return fmt.Sprintf("%s,%.1f,%.1f,%.1f,%d,%d,%.1f",
		r.Timestamp.Format(timestampLayout),
		r.Readings.InsideTemp,
		r.Readings.OutsideTemp,
		r.Readings.OutsideHumidity,
		heater,
		int64(r.SleepDuration/time.Second),
		r.ControllerTemp,
	)
}

// Manager owns the log directory and the currently open day.
// Not safe for concurrent use.
type Manager struct {
	dir      string
	maxFiles int
	current  string
}

// NewManager creates a Manager writing under dir and keeping maxFiles days.
func NewManager(dir string, maxFiles int) *Manager {
	if maxFiles < 1 {
		maxFiles = 1
	}
	return &Manager{dir: dir, maxFiles: maxFiles}
}

// Dir returns the log directory.
func (m *Manager) Dir() string {
	return m.dir
}

// EnsureLogFile returns the path of the file for date, creating the log
// directory and the file with its header if needed. The first call for a new
// day prunes old files.
func (m *Manager) EnsureLogFile(date time.Time) (string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(m.dir, FileName(date))
	if path == m.current {
		return path, nil
	}

	created, err := createWithHeader(path)
	if err != nil {
		return "", err
	}
	m.current = path
	if created {
		log.WithField("file", path).Info("logfile: started new daily log")
	}

	if _, err := m.Prune(m.maxFiles); err != nil {
		log.WithError(err).Warn("logfile: prune failed")
	}
	return path, nil
}

// createWithHeader creates path exclusively and writes the header. It
// reports false if the file already existed with content. An existing empty
// file, left by a power loss between create and header write, gets the header.
func createWithHeader(path string) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		info, statErr := os.Stat(path)
		if statErr != nil {
			return false, fmt.Errorf("stat log file: %w", statErr)
		}
		if info.Size() > 0 {
			return false, nil
		}
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0o644)
	}
	if err != nil {
		return false, fmt.Errorf("create log file: %w", err)
	}
	if _, err := f.WriteString(Header + "\n"); err != nil {
		f.Close()
		return true, fmt.Errorf("write header: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return true, fmt.Errorf("sync header: %w", err)
	}
	return true, f.Close()
}

// Append writes one record to path and syncs it to disk before closing.
func (m *Manager) Append(path string, r logic.Record) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if _, err := f.WriteString(FormatRecord(r) + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("append record: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync record: %w", err)
	}
	return f.Close()
}

// Write ensures the file for the record's day exists and appends the record.
func (m *Manager) Write(r logic.Record) error {
	path, err := m.EnsureLogFile(r.Timestamp)
	if err != nil {
		return err
	}
	return m.Append(path, r)
}

// Files lists daily log file names, oldest first.
func (m *Manager) Files() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("list log dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !isDailyLog(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	// Fixed-width dates sort chronologically.
	sort.Strings(names)
	return names, nil
}

// Prune deletes the oldest daily files while more than maxFiles remain.
// It returns the names it removed.
func (m *Manager) Prune(maxFiles int) ([]string, error) {
	names, err := m.Files()
	if err != nil {
		return nil, err
	}

	var removed []string
	for len(names) > maxFiles {
		oldest := names[0]
		if err := os.Remove(filepath.Join(m.dir, oldest)); err != nil {
			return removed, fmt.Errorf("delete %s: %w", oldest, err)
		}
		log.WithField("file", oldest).Info("logfile: pruned old log")
		removed = append(removed, oldest)
		names = names[1:]
	}
	return removed, nil
}

func isDailyLog(name string) bool {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return false
	}
	date := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	_, err := time.Parse(dateLayout, date)
	return err == nil
}
