package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/hotdog/internal/logic"
	"github.com/sweeney/hotdog/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"modeOrUnknown": func(m logic.Mode) string {
		if m == "" {
			return "UNKNOWN"
		}
		return string(m)
	},
	"secs": func(d time.Duration) int64 {
		return int64(d / time.Second)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="30">
<title>Hotdog</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: #c60; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Hotdog</h1>

<h2>Thermostat</h2>
<table>
<tr><th>Mode</th><td id="mode" class="{{if eq (modeOrUnknown .Mode) "ON"}}on{{else if eq (modeOrUnknown .Mode) "OFF"}}off{{else}}unknown{{end}}">{{modeOrUnknown .Mode}}</td></tr>
{{if .HasRecord}}<tr><th>Inside</th><td>{{printf "%.1f" .Last.Readings.InsideTemp}} &deg;C</td></tr>
<tr><th>Outside</th><td>{{printf "%.1f" .Last.Readings.OutsideTemp}} &deg;C</td></tr>
<tr><th>Humidity</th><td>{{printf "%.1f" .Last.Readings.OutsideHumidity}} %</td></tr>
<tr><th>Controller</th><td>{{printf "%.1f" .Last.ControllerTemp}} &deg;C</td></tr>
<tr><th>Last record</th><td>{{.Last.Timestamp.Format "2006-01-02 15:04:05"}}{{if gt (secs .Last.SleepDuration) 0}} (slept {{secs .Last.SleepDuration}}s){{end}}</td></tr>
{{else}}<tr><th>Last record</th><td>none yet</td></tr>{{end}}
</table>

<h2>Setpoints</h2>
<table>
<tr><th>Outside</th><td>ON &le; {{.Config.Setpoints.OutsideLow}} &deg;C, OFF &ge; {{.Config.Setpoints.OutsideHigh}} &deg;C</td></tr>
<tr><th>Inside</th><td>ON &le; {{.Config.Setpoints.InsideLow}} &deg;C, OFF &ge; {{.Config.Setpoints.InsideHigh}} &deg;C</td></tr>
<tr><th>Average</th><td>{{.Config.AverageReads}} reads</td></tr>
<tr><th>Interval</th><td>OFF {{.Config.OffIntervalS}}s, ON {{.Config.OnIntervalS}}s</td></tr>
<tr><th>Sleep</th><td>{{if .Config.SleepEnabled}}{{.Config.SleepS}}s{{else}}disabled{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Connect}}<tr><th>Network</th><td>{{.Connect.Outcome}} ({{.Connect.Status}})</td></tr>
<tr><th>Checked</th><td>{{.Connect.At.Format "2006-01-02 15:04:05"}}</td></tr>{{end}}
</table>

<h2>Counts</h2>
<table>
<tr><th>Records</th><td>{{.Counts.Records}}</td></tr>
<tr><th>Transitions</th><td>{{.Counts.Transitions}}</td></tr>
<tr><th>Sleep cycles</th><td>{{.Counts.SleepCycles}}</td></tr>
<tr><th>Sensor errors</th><td>{{.Counts.SensorErrors}}</td></tr>
<tr><th>Log errors</th><td>{{.Counts.LogErrors}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Session</th><td>{{.Session}}</td></tr>
<tr><th>Logs</th><td>{{.Config.LogDir}} (keep {{.Config.MaxLogFiles}})</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/logs">Logs</a></p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	indexTmpl.Execute(w, data)
}
