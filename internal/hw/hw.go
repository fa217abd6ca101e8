// Package hw abstracts the digital inputs and outputs the controller is
// attached to. The real implementation drives Raspberry Pi GPIO lines through
// the Linux GPIO character device; fakes and null devices exist for tests and
// for running without hardware.
package hw

import "time"

// Input is a digital input line (a button or relay contact).
type Input interface {
	// WaitForPress blocks until the input is activated or the timeout
	// elapses. It returns true only for an activation.
	WaitForPress(timeout time.Duration) bool

	// Close releases the underlying line.
	Close() error
}

// Output is a digital output line (a status LED or the bell coil).
type Output interface {
	On()
	Off()

	// Close releases the underlying line.
	Close() error
}

// Board hands out input and output lines by pin number (BCM numbering).
type Board interface {
	Input(pin int) (Input, error)
	Output(pin int) (Output, error)
	Close() error
}
