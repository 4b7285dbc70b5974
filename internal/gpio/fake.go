package gpio

import "errors"

// FakeChannel is a test double with scripted tachometer levels and a
// recorded fault line state.
type FakeChannel struct {
	// Levels contains scripted tach levels. Each ReadInput consumes the
	// next one; when exhausted the last level repeats.
	Levels []bool

	// index tracks current position in Levels
	index int

	// Driven is true while the fault line is actively driven low,
	// false while it floats.
	Driven bool

	// FloatHighs and DriveLows count the applied output operations.
	FloatHighs int
	DriveLows  int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by ReadInput
	ReadError error
}

// NewFakeChannel creates a FakeChannel with the given tach levels.
func NewFakeChannel(levels []bool) *FakeChannel {
	return &FakeChannel{Levels: levels}
}

// ReadInput returns the next scripted level.
func (f *FakeChannel) ReadInput() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Levels) == 0 {
		return false, errors.New("no levels configured")
	}

	level := f.Levels[f.index]
	if f.index < len(f.Levels)-1 {
		f.index++
	}

	return level, nil
}

// FloatHigh records the fault line being released.
func (f *FakeChannel) FloatHigh() error {
	f.Driven = false
	f.FloatHighs++
	return nil
}

// DriveLow records the fault line being asserted.
func (f *FakeChannel) DriveLow() error {
	f.Driven = true
	f.DriveLows++
	return nil
}

// Close marks the channel as closed.
func (f *FakeChannel) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds the scripted levels and clears the recorded state.
func (f *FakeChannel) Reset() {
	f.index = 0
	f.Driven = false
	f.FloatHighs = 0
	f.DriveLows = 0
	f.Closed = false
}
