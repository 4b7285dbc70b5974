//go:build !linux

package gpio

import "errors"

// RealChannel is not available on non-Linux platforms.
type RealChannel struct{}

// NewRealChannel returns an error on non-Linux platforms.
func NewRealChannel(pins Pins) (*RealChannel, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// ReadInput is not implemented on non-Linux platforms.
func (r *RealChannel) ReadInput() (bool, error) {
	return false, errors.New("gpio: not supported")
}

// FloatHigh is not implemented on non-Linux platforms.
func (r *RealChannel) FloatHigh() error {
	return errors.New("gpio: not supported")
}

// DriveLow is not implemented on non-Linux platforms.
func (r *RealChannel) DriveLow() error {
	return errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (r *RealChannel) Close() error {
	return nil
}
