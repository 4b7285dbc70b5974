// Package logic contains the pure per-channel locked-rotor state machine.
// This package has NO hardware dependencies (no GPIO, no timers, no
// time.Sleep). Time is injected as a tick value on every step.
package logic

import (
	"fmt"

	"github.com/sweeney/fan-sentinel/internal/ticks"
)

// State is the detector's position in the power-up sequence. Transitions
// are unidirectional: Init -> PowerOn -> SpinUp -> Running, and Running
// is terminal.
type State uint8

const (
	// StateInit is the reset state; the fault line is left floating.
	StateInit State = iota

	// StatePowerOn simulates the vendor controller's start-up delay
	// with the fault line floating high.
	StatePowerOn

	// StateSpinUp drives the fault line low while the fan settles.
	// Sampling already runs in the background.
	StateSpinUp

	// StateRunning lets the latched window verdict drive the fault line.
	StateRunning
)

// String returns the state name used in events and status output.
func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StatePowerOn:
		return "POWER_ON"
	case StateSpinUp:
		return "SPIN_UP"
	case StateRunning:
		return "RUNNING"
	}
	return "INVALID"
}

// Output is the demanded level of the fault line.
type Output uint8

const (
	// OutputFloatHigh releases the line; the external pull-up reads it
	// as logic high (locked rotor, or start-up).
	OutputFloatHigh Output = iota

	// OutputDriveLow actively asserts the line low (rotor healthy).
	OutputDriveLow
)

// String returns the output name used in status output.
func (o Output) String() string {
	if o == OutputDriveLow {
		return "DRIVE_LOW"
	}
	return "FLOAT_HIGH"
}

// EventType represents a reportable detector transition.
type EventType string

const (
	EventSpinUp  EventType = "SPIN_UP"
	EventRunning EventType = "RUNNING"
	EventLocked  EventType = "LOCKED"
	EventHealthy EventType = "HEALTHY"
)

// Event is a detector transition to be published.
type Event struct {
	At   ticks.Ticks
	Type EventType
}

// Config holds the detector timing and threshold parameters, all in
// ticks except the toggle threshold.
type Config struct {
	// PowerOnTicks is how long the fault line floats after power-up
	// before spin-up begins. The original controller measured the fan
	// it emulates driving low after ~1.2µs and ran with zero here, but
	// the delay stays configurable because the point of the state is to
	// simulate the vendor's documented start-up behavior.
	PowerOnTicks ticks.Ticks

	// SpinUpTicks is how long the fault line is held low while the fan
	// settles. Must be an integer multiple >= 1 of SampleTicks.
	SpinUpTicks ticks.Ticks

	// SampleTicks is the toggle-counting window length.
	SampleTicks ticks.Ticks

	// ToggleThreshold is the minimum number of tach level changes per
	// window for the rotor to be judged healthy. Two pulse cycles per
	// revolution means 4 changes per revolution: 40 = 600 RPM,
	// 52 = 780 RPM, 64 = 960 RPM.
	ToggleThreshold uint32
}

// Validate checks the inter-parameter constraints.
func (c Config) Validate() error {
	if c.SampleTicks == 0 {
		return fmt.Errorf("sample window must be at least one tick")
	}
	if c.SpinUpTicks < c.SampleTicks || c.SpinUpTicks%c.SampleTicks != 0 {
		return fmt.Errorf("spin-up duration (%d ticks) must be an integer multiple >= 1 of the sample window (%d ticks)",
			c.SpinUpTicks, c.SampleTicks)
	}
	return nil
}

// Input is a single sample: the tach level and the shared loop timestamp.
type Input struct {
	Level bool
	Now   ticks.Ticks
}

// EventCounts tracks the number of each reportable event since startup.
type EventCounts struct {
	Locked  int
	Healthy int
	Windows int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	At     ticks.Ticks
	Uptime ticks.Ticks
	Counts EventCounts
}
