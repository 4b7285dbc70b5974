package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Channels      []ChannelJSON `json:"channels"`
	Ticks         uint32        `json:"ticks"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Config        ConfigJSON    `json:"config"`
}

// ChannelJSON is the JSON representation of one fan channel.
type ChannelJSON struct {
	Channel        int        `json:"channel"`
	State          string     `json:"state"`
	Output         string     `json:"output"`
	UnderThreshold bool       `json:"under_threshold"`
	Toggles        uint32     `json:"window_toggles"`
	Counts         CountsJSON `json:"event_counts"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Locked  int `json:"locked"`
	Healthy int `json:"healthy"`
	Windows int `json:"windows"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs          int64  `json:"poll_ms"`
	TickPeriodUs    int64  `json:"tick_period_us"`
	PowerOnTicks    uint32 `json:"power_on_ticks"`
	SpinUpTicks     uint32 `json:"spin_up_ticks"`
	SampleTicks     uint32 `json:"sample_ticks"`
	ToggleThreshold uint32 `json:"toggle_threshold"`
	Broker          string `json:"broker"`
	HTTPPort        string `json:"http_port"`
}

func buildInner(snap Snapshot) StatusInner {
	channels := make([]ChannelJSON, len(snap.Channels))
	for i, ch := range snap.Channels {
		channels[i] = ChannelJSON{
			Channel:        i,
			State:          ch.State.String(),
			Output:         ch.Output.String(),
			UnderThreshold: ch.UnderThreshold,
			Toggles:        ch.Toggles,
			Counts: CountsJSON{
				Locked:  ch.Counts.Locked,
				Healthy: ch.Counts.Healthy,
				Windows: ch.Counts.Windows,
			},
		}
	}

	return StatusInner{
		Channels:      channels,
		Ticks:         uint32(snap.Ticks),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			PollMs:          snap.Config.PollMs,
			TickPeriodUs:    snap.Config.TickPeriodUs,
			PowerOnTicks:    snap.Config.PowerOnTicks,
			SpinUpTicks:     snap.Config.SpinUpTicks,
			SampleTicks:     snap.Config.SampleTicks,
			ToggleThreshold: snap.Config.ToggleThreshold,
			Broker:          snap.Config.Broker,
			HTTPPort:        snap.Config.HTTPPort,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
