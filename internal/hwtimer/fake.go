package hwtimer

// FakeTimer is a test double with a scripted counter. Tests advance it
// explicitly; the AfterCount hook fires between the two pending-flag
// reads of a clock read, which is where an overflow race can land.
type FakeTimer struct {
	// CountValue is the current low-order counter value.
	CountValue uint32

	// ModulusValue is the wrap range. Zero means 256.
	ModulusValue uint32

	// Pending is the latched overflow indication.
	Pending bool

	// Masked reports whether the overflow handler is currently masked.
	Masked bool

	// Running tracks Start/Stop calls.
	Running bool

	// Resets counts Reset calls.
	Resets int

	// AfterCount, if set, is invoked immediately after each Count call.
	AfterCount func(f *FakeTimer)

	handler func()
	// pendingDelivery is set when a wrap happens while masked; the
	// overflow is delivered on unmask.
	pendingDelivery bool
}

// Start marks the timer running.
func (f *FakeTimer) Start() { f.Running = true }

// Stop marks the timer stopped.
func (f *FakeTimer) Stop() { f.Running = false }

// Reset zeroes the counter.
func (f *FakeTimer) Reset() {
	f.CountValue = 0
	f.Resets++
}

// Count returns the scripted counter value, then runs AfterCount.
func (f *FakeTimer) Count() uint32 {
	v := f.CountValue
	if f.AfterCount != nil {
		f.AfterCount(f)
	}
	return v
}

// Modulus returns the wrap range.
func (f *FakeTimer) Modulus() uint32 {
	if f.ModulusValue == 0 {
		return 256
	}
	return f.ModulusValue
}

// OverflowPending returns the latched indication.
func (f *FakeTimer) OverflowPending() bool { return f.Pending }

// ClearOverflow clears the latched indication.
func (f *FakeTimer) ClearOverflow() {
	f.Pending = false
	f.pendingDelivery = false
}

// SetOverflowHandler registers the overflow handler.
func (f *FakeTimer) SetOverflowHandler(fn func()) { f.handler = fn }

// MaskOverflow blocks overflow delivery.
func (f *FakeTimer) MaskOverflow() { f.Masked = true }

// UnmaskOverflow releases the mask and delivers any wrap that happened
// while masked.
func (f *FakeTimer) UnmaskOverflow() {
	f.Masked = false
	if f.pendingDelivery {
		f.deliver()
	}
}

// Advance moves the counter forward by n ticks, wrapping at the modulus.
// Each wrap either delivers the overflow immediately or, while masked,
// latches it as pending for delivery on unmask.
func (f *FakeTimer) Advance(n uint32) {
	m := f.Modulus()
	for n > 0 {
		step := n
		if room := m - f.CountValue; step >= room {
			step = room
			f.CountValue = 0
			f.wrap()
		} else {
			f.CountValue += step
		}
		n -= step
	}
}

// Wrap simulates the counter wrapping to zero right now.
func (f *FakeTimer) Wrap() {
	f.CountValue = 0
	f.wrap()
}

func (f *FakeTimer) wrap() {
	f.Pending = true
	if f.Masked {
		f.pendingDelivery = true
		return
	}
	f.deliver()
}

// deliver models the interrupt vector: clear the flag, run the handler.
func (f *FakeTimer) deliver() {
	f.Pending = false
	f.pendingDelivery = false
	if f.handler != nil {
		f.handler()
	}
}
