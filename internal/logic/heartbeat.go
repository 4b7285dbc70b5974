package logic

import "github.com/sweeney/fan-sentinel/internal/ticks"

// Heartbeat schedules the periodic HEARTBEAT event for the daemon.
// An interval of zero disables it.
type Heartbeat struct {
	start    ticks.Ticks
	last     ticks.Ticks
	interval ticks.Ticks
}

// NewHeartbeat creates a schedule anchored at start.
func NewHeartbeat(start, interval ticks.Ticks) *Heartbeat {
	return &Heartbeat{start: start, last: start, interval: interval}
}

// Check returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). counts is the aggregate across channels.
// Returns nil if disabled or not yet due.
func (h *Heartbeat) Check(now ticks.Ticks, counts EventCounts) *HeartbeatData {
	if h.interval == 0 {
		return nil
	}
	if now-h.last < h.interval {
		return nil
	}
	h.last = now
	return &HeartbeatData{
		At:     now,
		Uptime: now - h.start,
		Counts: counts,
	}
}
