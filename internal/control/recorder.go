package control

import (
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/hotdog/internal/logic"
	"github.com/sweeney/hotdog/internal/mqtt"
	"github.com/sweeney/hotdog/internal/status"
)

// LogWriter appends a record to durable storage.
type LogWriter interface {
	Write(rec logic.Record) error
}

// Fanout is the production Recorder. It writes each record to the daily log,
// publishes it, and updates the status tracker. Publisher, MQTT and Tracker
// may be nil.
type Fanout struct {
	Log       LogWriter
	Publisher mqtt.Publisher
	MQTT      mqtt.ConnectionStatus
	Tracker   *status.Tracker
	Session   string
}

// Record stores one log record.
func (f *Fanout) Record(rec logic.Record, mode logic.Mode) {
	if err := f.Log.Write(rec); err != nil {
		log.WithError(err).Error("control: log append failed")
		if f.Tracker != nil {
			f.Tracker.LogError()
		}
	}
	if f.Publisher != nil {
		if err := f.Publisher.Publish(rec, mode); err != nil {
			log.WithError(err).Warn("control: telemetry publish failed")
		}
	}
	if f.Tracker != nil {
		f.Tracker.RecordWritten(rec)
		if f.MQTT != nil {
			f.Tracker.SetMQTTConnected(f.MQTT.IsConnected())
		}
	}
}

// SensorError reports a skipped sample.
func (f *Fanout) SensorError(err error) {
	log.WithError(err).Warn("control: sensor read failed, sample skipped")
	if f.Tracker != nil {
		f.Tracker.SensorError()
	}
}

// Entered reports a mode change, including the initial OFF.
func (f *Fanout) Entered(mode logic.Mode, at time.Time) {
	log.WithField("mode", mode).Info("control: entering mode")
	if f.Tracker != nil {
		f.Tracker.SetMode(mode)
	}
	if f.Publisher == nil {
		return
	}
	event := mqtt.SystemEvent{
		Timestamp: at,
		Event:     mqtt.EventMode,
		Mode:      mode,
		Session:   f.Session,
	}
	if err := f.Publisher.PublishSystem(event); err != nil {
		log.WithError(err).Warn("control: mode event publish failed")
	}
}
