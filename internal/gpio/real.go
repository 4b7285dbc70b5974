//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealChannel drives one fan channel on actual hardware using the Linux
// GPIO character device.
type RealChannel struct {
	chip  *gpiocdev.Chip
	tach  *gpiocdev.Line
	fault *gpiocdev.Line
}

// NewRealChannel requests the channel's lines on gpiochip0.
// The tach line is an input with a pull-up (open-collector tach outputs
// need one). The fault line is requested as an open-drain output with
// value 1, which leaves it released: open-drain gives the exact
// float-high / drive-low semantics the fault signal needs.
func NewRealChannel(pins Pins) (*RealChannel, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	tach, err := chip.RequestLine(pins.Tach, gpiocdev.AsInput, gpiocdev.WithPullUp)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request tach pin %d: %w", pins.Tach, err)
	}

	fault, err := chip.RequestLine(pins.Fault, gpiocdev.AsOutput(1), gpiocdev.AsOpenDrain)
	if err != nil {
		tach.Close()
		chip.Close()
		return nil, fmt.Errorf("request fault pin %d: %w", pins.Fault, err)
	}

	return &RealChannel{
		chip:  chip,
		tach:  tach,
		fault: fault,
	}, nil
}

// ReadInput returns the current tachometer level.
func (r *RealChannel) ReadInput() (bool, error) {
	v, err := r.tach.Value()
	if err != nil {
		return false, fmt.Errorf("read tach pin: %w", err)
	}
	return v != 0, nil
}

// FloatHigh releases the fault line. With an open-drain request, writing
// 1 stops sinking current and the external pull-up takes over.
func (r *RealChannel) FloatHigh() error {
	if err := r.fault.SetValue(1); err != nil {
		return fmt.Errorf("release fault pin: %w", err)
	}
	return nil
}

// DriveLow actively asserts the fault line low.
func (r *RealChannel) DriveLow() error {
	if err := r.fault.SetValue(0); err != nil {
		return fmt.Errorf("assert fault pin: %w", err)
	}
	return nil
}

// Close releases GPIO resources.
// The fault line is reconfigured to input first so it fails safe to the
// external pull-up (reads as locked) once the daemon is gone.
func (r *RealChannel) Close() error {
	var errs []error

	if r.fault != nil {
		if err := r.fault.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure fault pin: %w", err))
		}
		if err := r.fault.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close fault pin: %w", err))
		}
	}
	if r.tach != nil {
		if err := r.tach.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close tach pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
