package hwtimer

import (
	"sync"
	"time"
)

// Defaults matching the original controller hardware: an 8-bit counter
// prescaled to 8µs per increment.
const (
	DefaultPeriod  = 8 * time.Microsecond
	DefaultModulus = 256
)

// HostTimer emulates a free-running hardware counter on top of the host
// monotonic clock. The counter value is derived from elapsed wall time,
// so it keeps running even while the overflow handler is masked, exactly
// like real hardware. A background goroutine delivers overflow callbacks;
// between the physical wrap and its delivery the overflow is pending.
type HostTimer struct {
	period  time.Duration
	modulus uint32

	// mu is the overflow mask. The delivery goroutine holds it while
	// invoking the handler, so MaskOverflow excludes the handler.
	mu        sync.Mutex
	epoch     time.Time
	frozen    uint64 // ticks accumulated before the last Stop
	running   bool
	delivered uint64 // wraps delivered to the handler or cleared
	handler   func()
	quit      chan struct{}
}

// NewHostTimer creates a stopped HostTimer. A period or modulus of zero
// selects the default.
func NewHostTimer(period time.Duration, modulus uint32) *HostTimer {
	if period <= 0 {
		period = DefaultPeriod
	}
	if modulus == 0 {
		modulus = DefaultModulus
	}
	return &HostTimer{period: period, modulus: modulus}
}

// totalTicks returns the number of periods elapsed since Reset.
// Caller must hold mu.
func (h *HostTimer) totalTicks() uint64 {
	t := h.frozen
	if h.running {
		t += uint64(time.Since(h.epoch) / h.period)
	}
	return t
}

// Start lets the counter run and begins overflow delivery. Mask-only.
func (h *HostTimer) Start() {
	if h.running {
		return
	}
	h.epoch = time.Now()
	h.running = true
	h.quit = make(chan struct{})
	go h.deliver(h.quit)
}

// Stop freezes the counter and halts overflow delivery. Mask-only.
func (h *HostTimer) Stop() {
	if !h.running {
		return
	}
	h.frozen = h.totalTicks()
	h.running = false
	close(h.quit)
	h.quit = nil
}

// Reset zeroes the counter and discards any pending overflow. Mask-only.
func (h *HostTimer) Reset() {
	h.epoch = time.Now()
	h.frozen = 0
	h.delivered = 0
}

// Count returns the low-order counter value. Mask-only.
func (h *HostTimer) Count() uint32 {
	return uint32(h.totalTicks() % uint64(h.modulus))
}

// Modulus returns the counter wrap range.
func (h *HostTimer) Modulus() uint32 {
	return h.modulus
}

// OverflowPending reports an undelivered wrap. Mask-only.
func (h *HostTimer) OverflowPending() bool {
	return h.totalTicks()/uint64(h.modulus) > h.delivered
}

// ClearOverflow discards pending overflow indications. Mask-only.
func (h *HostTimer) ClearOverflow() {
	h.delivered = h.totalTicks() / uint64(h.modulus)
}

// SetOverflowHandler registers fn. Mask-only. The handler runs with the
// mask held and must not call MaskOverflow itself.
func (h *HostTimer) SetOverflowHandler(fn func()) {
	h.handler = fn
}

// MaskOverflow blocks overflow delivery until UnmaskOverflow.
func (h *HostTimer) MaskOverflow() { h.mu.Lock() }

// UnmaskOverflow releases the mask taken by MaskOverflow.
func (h *HostTimer) UnmaskOverflow() { h.mu.Unlock() }

// deliver sleeps until the next wrap boundary and invokes the handler
// once per elapsed wrap. Delivery clears the pending indication.
func (h *HostTimer) deliver(quit chan struct{}) {
	for {
		h.mu.Lock()
		wraps := h.totalTicks() / uint64(h.modulus)
		for h.delivered < wraps {
			h.delivered++
			if h.handler != nil {
				h.handler()
			}
		}
		remaining := uint64(h.modulus) - h.totalTicks()%uint64(h.modulus)
		h.mu.Unlock()

		sleep := time.Duration(remaining) * h.period
		if sleep < h.period {
			sleep = h.period
		}
		select {
		case <-quit:
			return
		case <-time.After(sleep):
		}
	}
}
