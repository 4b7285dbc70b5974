package logic

import "github.com/sweeney/fan-sentinel/internal/ticks"

// Detector runs the locked-rotor state machine for one fan channel.
// It is created once at startup and lives for the process lifetime.
//
// All tick comparisons use uint32 wraparound subtraction, so they stay
// correct across counter wrap as long as the configured durations are
// below half the tick range.
type Detector struct {
	cfg Config

	state       State
	stateEntry  ticks.Ticks // when the current state was entered
	windowStart ticks.Ticks // start of the current toggle-counting window
	toggles     uint32
	prevLevel   bool

	// underThreshold is the verdict latched at the last window boundary.
	// It only drives the output while in StateRunning.
	underThreshold bool

	// reported is the last verdict published as an event, so a repeat
	// verdict at a window boundary does not re-emit.
	reported bool

	counts EventCounts
}

// NewDetector creates a detector in StateInit. The config is not
// validated here; call Config.Validate before building detectors.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg}
}

// Step advances the state machine by one poll. It must be called with
// the shared loop timestamp so all channels stay phase-aligned. The
// returned Output is the level the fault line must have after this step;
// callers apply it every step (the operations are idempotent).
func (d *Detector) Step(in Input) (Output, []Event) {
	switch d.state {
	case StateInit:
		d.stateEntry = in.Now
		d.state = StatePowerOn
		// Fault line is floating already; nothing to drive yet.
		return OutputFloatHigh, nil

	case StatePowerOn:
		if in.Now-d.stateEntry > d.cfg.PowerOnTicks {
			d.state = StateSpinUp
			d.stateEntry = in.Now
			d.windowStart = in.Now
			return OutputDriveLow, []Event{{At: in.Now, Type: EventSpinUp}}
		}
		return OutputFloatHigh, nil

	case StateSpinUp:
		d.sample(in)
		var events []Event
		if in.Now-d.stateEntry > d.cfg.SpinUpTicks {
			// The transition itself touches no sampling fields, so a
			// window spanning it is neither skipped nor double-reset.
			d.state = StateRunning
			d.reported = d.underThreshold
			events = append(events,
				Event{At: in.Now, Type: EventRunning},
				d.verdictEvent(in.Now))
		}
		// Held low for the whole spin-up, whatever the interim verdict.
		return OutputDriveLow, events

	case StateRunning:
		boundary := d.sample(in)
		var events []Event
		if boundary && d.underThreshold != d.reported {
			d.reported = d.underThreshold
			events = append(events, d.verdictEvent(in.Now))
		}
		if d.underThreshold {
			return OutputFloatHigh, events
		}
		return OutputDriveLow, events
	}

	// Unrepresentable state: fail safe, signal a fan failure.
	return OutputFloatHigh, nil
}

// sample is the toggle-counting step shared by SpinUp and Running.
// It reports whether a window boundary was crossed; the verdict is
// latched only there.
func (d *Detector) sample(in Input) bool {
	if in.Level != d.prevLevel {
		d.toggles++
		d.prevLevel = in.Level
	}

	if in.Now-d.windowStart > d.cfg.SampleTicks {
		d.underThreshold = d.toggles < d.cfg.ToggleThreshold
		d.toggles = 0
		d.windowStart = in.Now
		d.counts.Windows++
		return true
	}
	return false
}

// verdictEvent builds the event for the current verdict and counts it.
func (d *Detector) verdictEvent(now ticks.Ticks) Event {
	if d.underThreshold {
		d.counts.Locked++
		return Event{At: now, Type: EventLocked}
	}
	d.counts.Healthy++
	return Event{At: now, Type: EventHealthy}
}

// State returns the current state.
func (d *Detector) State() State {
	return d.state
}

// UnderThreshold returns the verdict latched at the last window boundary.
func (d *Detector) UnderThreshold() bool {
	return d.underThreshold
}

// Toggles returns the toggle count accumulated in the current window.
func (d *Detector) Toggles() uint32 {
	return d.toggles
}

// EventCountsSnapshot returns a copy of the event counters.
func (d *Detector) EventCountsSnapshot() EventCounts {
	return d.counts
}

// ForceState overrides the state field. Only for fail-safe testing.
func (d *Detector) ForceState(s State) {
	d.state = s
}
