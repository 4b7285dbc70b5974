// Package ticks provides a monotonic tick clock built on a free-running
// hardware counter and its overflow event. The clock read is safe
// against an overflow landing at any point during the read.
package ticks

import (
	"time"

	"github.com/sweeney/fan-sentinel/internal/hwtimer"
)

// Ticks is a point on the tick timeline. It wraps silently at the
// maximum uint32. Elapsed time is always computed as `later - earlier`
// in uint32 arithmetic, which stays correct across the wrap as long as
// the true elapsed duration is less than half the uint32 range.
type Ticks uint32

// Clock owns the counter's high-order accumulator. The accumulator is
// written only by the overflow handler; everything else reads it through
// Now under the overflow mask.
type Clock struct {
	timer hwtimer.Timer
	hi    uint32
}

// New creates a Clock on the given timer. Init must be called before Now.
func New(t hwtimer.Timer) *Clock {
	return &Clock{timer: t}
}

// Init establishes tick origin zero: the counter is stopped, cleared and
// restarted with the accumulator zeroed and the overflow handler armed.
// Call exactly once.
func (c *Clock) Init() {
	c.timer.MaskOverflow()
	c.timer.Stop()
	c.timer.Reset()
	c.timer.ClearOverflow()
	c.hi = 0
	c.timer.SetOverflowHandler(c.onOverflow)
	c.timer.Start()
	c.timer.UnmaskOverflow()
}

// onOverflow is the sole writer of the accumulator. The timer invokes it
// once per counter wrap, never while the mask is held by a reader.
func (c *Clock) onOverflow() {
	c.hi += c.timer.Modulus()
}

// Now returns the current tick count. Monotonically non-decreasing
// across overflows, including one landing during this call.
func (c *Clock) Now() Ticks {
	c.timer.MaskOverflow()

	// The pending flag is read on both sides of the counter read and
	// the read retried until they agree, so at most one counter read
	// can ever span a wrap.
	var pending bool
	var count uint32
	for {
		before := c.timer.OverflowPending()
		count = c.timer.Count()
		after := c.timer.OverflowPending()
		if before == after {
			pending = before
			break
		}
	}

	t := c.hi + count
	c.timer.UnmaskOverflow()

	if pending {
		// The wrap has physically happened but the handler could not
		// run under the mask, so the accumulator is stale by exactly
		// one wrap.
		t += c.timer.Modulus()
	}
	return Ticks(t)
}

// FromDuration converts a wall duration to ticks at the given period,
// rounding down. Period must be positive.
func FromDuration(d, period time.Duration) Ticks {
	if d <= 0 {
		return 0
	}
	return Ticks(d / period)
}
