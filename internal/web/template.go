package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/fan-sentinel/internal/status"
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
	"verdict": func(ch status.ChannelStatus) string {
		if ch.State.String() != "RUNNING" {
			return "—"
		}
		if ch.UnderThreshold {
			return "LOCKED"
		}
		return "HEALTHY"
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Fan Sentinel</title>
<style>
body { font-family: monospace; max-width: 640px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
.healthy { color: green; font-weight: bold; }
.locked { color: red; font-weight: bold; }
.pending { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Fan Sentinel</h1>

<h2>Channels</h2>
<table>
<tr><th>#</th><th>State</th><th>Fault line</th><th>Verdict</th><th>Window toggles</th><th>Locked</th><th>Healthy</th><th>Windows</th></tr>
{{range $i, $ch := .Channels}}
<tr>
<td>{{$i}}</td>
<td class="{{if eq ($ch.State.String) "RUNNING"}}healthy{{else}}pending{{end}}">{{$ch.State.String}}</td>
<td>{{$ch.Output.String}}</td>
<td class="{{if $ch.UnderThreshold}}locked{{else}}healthy{{end}}">{{verdict $ch}}</td>
<td>{{$ch.Toggles}}</td>
<td>{{$ch.Counts.Locked}}</td>
<td>{{$ch.Counts.Healthy}}</td>
<td>{{$ch.Counts.Windows}}</td>
</tr>
{{end}}
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Ticks</th><td>{{.Ticks}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Tick period</th><td>{{.Config.TickPeriodUs}}µs</td></tr>
<tr><th>Sample window</th><td>{{.Config.SampleTicks}} ticks</td></tr>
<tr><th>Spin-up</th><td>{{.Config.SpinUpTicks}} ticks</td></tr>
<tr><th>Power-on</th><td>{{.Config.PowerOnTicks}} ticks</td></tr>
<tr><th>Toggle threshold</th><td>{{.Config.ToggleThreshold}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a></p>
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
