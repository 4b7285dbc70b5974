// Package gpio provides the per-channel line capability set with
// hardware abstraction. The real implementation uses the Linux GPIO
// character device. The fake implementation allows testing without
// hardware.
package gpio

// Channel is the capability set for one fan channel: a tachometer input
// line and an open-drain fault output line.
type Channel interface {
	// ReadInput returns the current tachometer level.
	ReadInput() (bool, error)

	// FloatHigh releases the fault line to high impedance; the external
	// pull-up reads it as logic high.
	FloatHigh() error

	// DriveLow actively asserts the fault line low.
	DriveLow() error

	// Close releases GPIO resources, leaving the fault line floating.
	Close() error
}

// Pins names the two lines of one channel (BCM numbering).
type Pins struct {
	Tach  int
	Fault int
}

// Default pin assignments for the two stock channels.
var DefaultPins = [2]Pins{
	{Tach: 17, Fault: 22},
	{Tach: 27, Fault: 23},
}
