//go:build linux

package hw

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// GPIOBoard is a Board backed by a Linux GPIO character device chip.
type GPIOBoard struct {
	chip *gpiocdev.Chip
}

// OpenGPIO opens the named GPIO chip (e.g. "gpiochip0").
func OpenGPIO(chip string) (*GPIOBoard, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %s: %w", chip, err)
	}
	return &GPIOBoard{chip: c}, nil
}

// Input requests the pin as an input with pull-down and rising-edge event
// detection. Edge events are debounced in hardware where supported.
func (b *GPIOBoard) Input(pin int) (Input, error) {
	in := &gpioInput{presses: make(chan struct{})}

	line, err := b.chip.RequestLine(pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(in.handleEvent))
	if err != nil {
		return nil, fmt.Errorf("request input pin %d: %w", pin, err)
	}

	in.line = line
	return in, nil
}

// Output requests the pin as an output, initially inactive.
func (b *GPIOBoard) Output(pin int) (Output, error) {
	line, err := b.chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}
	return &gpioOutput{line: line}, nil
}

// Close releases the chip. Lines must be closed individually first.
func (b *GPIOBoard) Close() error {
	return b.chip.Close()
}

type gpioInput struct {
	line    *gpiocdev.Line
	presses chan struct{}
}

func (i *gpioInput) handleEvent(evt gpiocdev.LineEvent) {
	if evt.Type != gpiocdev.LineEventRisingEdge {
		return
	}
	// An edge nobody is waiting for is missed, not queued: presses during
	// a running action sequence are intentionally dropped.
	select {
	case i.presses <- struct{}{}:
	default:
	}
}

func (i *gpioInput) WaitForPress(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-i.presses:
		return true
	case <-timer.C:
		return false
	}
}

func (i *gpioInput) Close() error {
	return i.line.Close()
}

type gpioOutput struct {
	line *gpiocdev.Line
}

func (o *gpioOutput) On() {
	// A write failing means the line is gone; nothing to recover.
	_ = o.line.SetValue(1)
}

func (o *gpioOutput) Off() {
	_ = o.line.SetValue(0)
}

func (o *gpioOutput) Close() error {
	// Leave the line inactive before releasing it.
	_ = o.line.SetValue(0)
	return o.line.Close()
}
