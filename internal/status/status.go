// Package status provides a thread-safe status tracker for the
// fan-sentinel daemon. It is read by HTTP handlers and by the heartbeat
// and lifecycle event payload builders.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/fan-sentinel/internal/logic"
	"github.com/sweeney/fan-sentinel/internal/ticks"
)

// ChannelStatus is a point-in-time view of one fan channel.
type ChannelStatus struct {
	State          logic.State
	Output         logic.Output
	UnderThreshold bool
	Toggles        uint32
	Counts         logic.EventCounts
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs          int64
	TickPeriodUs    int64
	PowerOnTicks    uint32
	SpinUpTicks     uint32
	SampleTicks     uint32
	ToggleThreshold uint32
	Broker          string
	HTTPPort        string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Channels      []ChannelStatus
	Ticks         ticks.Ticks
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, numChannels int, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			Channels:  make([]ChannelStatus, numChannels),
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// UpdateChannel sets one channel's view. Called from the control loop on
// every poll.
func (t *Tracker) UpdateChannel(i int, ch ChannelStatus) {
	t.mu.Lock()
	if i >= 0 && i < len(t.snap.Channels) {
		t.snap.Channels[i] = ch
	}
	t.mu.Unlock()
}

// SetTicks records the latest clock reading.
func (t *Tracker) SetTicks(now ticks.Ticks) {
	t.mu.Lock()
	t.snap.Ticks = now
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// TotalCounts aggregates the event counts across channels.
func (t *Tracker) TotalCounts() logic.EventCounts {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var total logic.EventCounts
	for _, ch := range t.snap.Channels {
		total.Locked += ch.Counts.Locked
		total.Healthy += ch.Counts.Healthy
		total.Windows += ch.Counts.Windows
	}
	return total
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Channels = append([]ChannelStatus(nil), t.snap.Channels...)
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
