package status

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/fan-sentinel/internal/logic"
)

func testConfig() Config {
	return Config{
		PollMs:          2,
		TickPeriodUs:    8,
		PowerOnTicks:    0,
		SpinUpTicks:     625000,
		SampleTicks:     125000,
		ToggleThreshold: 40,
		Broker:          "tcp://192.168.1.200:1883",
		HTTPPort:        ":80",
	}
}

func TestNewTracker(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := NewTracker(start, 2, testConfig())

	snap := tr.Snapshot()
	if len(snap.Channels) != 2 {
		t.Fatalf("channels: got %d, want 2", len(snap.Channels))
	}
	if !snap.StartTime.Equal(start) {
		t.Errorf("start time: got %v, want %v", snap.StartTime, start)
	}
	if snap.Channels[0].State != logic.StateInit {
		t.Errorf("initial channel state: got %s, want INIT", snap.Channels[0].State)
	}
}

func TestUpdateChannel(t *testing.T) {
	tr := NewTracker(time.Now(), 2, testConfig())

	tr.UpdateChannel(1, ChannelStatus{
		State:          logic.StateRunning,
		Output:         logic.OutputFloatHigh,
		UnderThreshold: true,
		Toggles:        12,
		Counts:         logic.EventCounts{Locked: 3, Windows: 40},
	})

	snap := tr.Snapshot()
	if snap.Channels[0].State != logic.StateInit {
		t.Errorf("channel 0 should be untouched, got %s", snap.Channels[0].State)
	}
	if snap.Channels[1].State != logic.StateRunning {
		t.Errorf("channel 1 state: got %s, want RUNNING", snap.Channels[1].State)
	}
	if !snap.Channels[1].UnderThreshold {
		t.Error("channel 1 should be under threshold")
	}
	if snap.Channels[1].Toggles != 12 {
		t.Errorf("channel 1 toggles: got %d, want 12", snap.Channels[1].Toggles)
	}

	// Out-of-range updates are ignored, not panics.
	tr.UpdateChannel(5, ChannelStatus{})
	tr.UpdateChannel(-1, ChannelStatus{})
}

func TestSnapshotIsACopy(t *testing.T) {
	tr := NewTracker(time.Now(), 1, testConfig())
	snap := tr.Snapshot()

	snap.Channels[0].State = logic.StateRunning

	if tr.Snapshot().Channels[0].State != logic.StateInit {
		t.Error("mutating a snapshot leaked into the tracker")
	}
}

func TestTotalCounts(t *testing.T) {
	tr := NewTracker(time.Now(), 2, testConfig())
	tr.UpdateChannel(0, ChannelStatus{Counts: logic.EventCounts{Locked: 1, Healthy: 2, Windows: 10}})
	tr.UpdateChannel(1, ChannelStatus{Counts: logic.EventCounts{Locked: 3, Healthy: 4, Windows: 20}})

	total := tr.TotalCounts()
	if total.Locked != 4 {
		t.Errorf("locked: got %d, want 4", total.Locked)
	}
	if total.Healthy != 6 {
		t.Errorf("healthy: got %d, want 6", total.Healthy)
	}
	if total.Windows != 30 {
		t.Errorf("windows: got %d, want 30", total.Windows)
	}
}

func TestSetters(t *testing.T) {
	tr := NewTracker(time.Now(), 1, testConfig())

	tr.SetMQTTConnected(true)
	tr.SetTicks(987654)

	snap := tr.Snapshot()
	if !snap.MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}
	if snap.Ticks != 987654 {
		t.Errorf("ticks: got %d, want 987654", snap.Ticks)
	}
}

func TestFormatJSON(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tr := NewTracker(start, 2, testConfig())
	tr.UpdateChannel(0, ChannelStatus{
		State:          logic.StateRunning,
		Output:         logic.OutputDriveLow,
		UnderThreshold: false,
		Toggles:        26,
		Counts:         logic.EventCounts{Healthy: 1, Windows: 12},
	})
	tr.SetMQTTConnected(true)

	var sj StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(sj.Status.Channels) != 2 {
		t.Fatalf("channels: got %d, want 2", len(sj.Status.Channels))
	}
	ch := sj.Status.Channels[0]
	if ch.Channel != 0 {
		t.Errorf("channel index: got %d, want 0", ch.Channel)
	}
	if ch.State != "RUNNING" {
		t.Errorf("state: got %q, want RUNNING", ch.State)
	}
	if ch.Output != "DRIVE_LOW" {
		t.Errorf("output: got %q, want DRIVE_LOW", ch.Output)
	}
	if ch.UnderThreshold {
		t.Error("expected under_threshold=false")
	}
	if ch.Counts.Windows != 12 {
		t.Errorf("windows: got %d, want 12", ch.Counts.Windows)
	}
	if sj.Status.Channels[1].State != "INIT" {
		t.Errorf("channel 1 state: got %q, want INIT", sj.Status.Channels[1].State)
	}
	if !sj.Status.MQTT.Connected {
		t.Error("expected mqtt connected")
	}
	if sj.Status.Config.ToggleThreshold != 40 {
		t.Errorf("threshold: got %d, want 40", sj.Status.Config.ToggleThreshold)
	}
	if sj.Status.Event != "" {
		t.Errorf("web JSON should carry no event, got %q", sj.Status.Event)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(time.Now(), 1, testConfig())

	var sj StatusJSON
	data := FormatStatusEvent(tr.Snapshot(), "SHUTDOWN", "SIGTERM")
	if err := json.Unmarshal(data, &sj); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if sj.Status.Event != "SHUTDOWN" {
		t.Errorf("event: got %q, want SHUTDOWN", sj.Status.Event)
	}
	if sj.Status.Reason != "SIGTERM" {
		t.Errorf("reason: got %q, want SIGTERM", sj.Status.Reason)
	}
}
