// Package hwtimer abstracts a free-running hardware counter with an
// overflow interrupt. The tick clock is built on top of it.
// The real implementation derives the counter from the host monotonic
// clock. The fake implementation allows deterministic tests, including
// injecting an overflow in the middle of a clock read.
package hwtimer

// Timer is a free-running counter capability.
//
// All methods except Modulus, MaskOverflow and UnmaskOverflow must only
// be called while the overflow handler is masked; they model raw
// register accesses that are meaningless mid-interrupt.
type Timer interface {
	// Start lets the counter run. Stop freezes it. Reset zeroes it.
	Start()
	Stop()
	Reset()

	// Count returns the low-order counter value in [0, Modulus()).
	Count() uint32

	// Modulus returns the value at which the counter wraps to zero.
	// Each overflow represents Modulus ticks.
	Modulus() uint32

	// OverflowPending reports whether the counter has wrapped since the
	// overflow was last delivered or cleared. The indication latches
	// while the handler is masked.
	OverflowPending() bool

	// ClearOverflow discards a pending overflow indication.
	ClearOverflow()

	// SetOverflowHandler registers the function invoked once per wrap.
	// The handler is never invoked while masked; delivery clears the
	// pending indication first, like a hardware interrupt vector.
	SetOverflowHandler(fn func())

	// MaskOverflow blocks overflow delivery until UnmaskOverflow.
	// The pair delimits the critical section used by clock reads.
	MaskOverflow()
	UnmaskOverflow()
}
