//go:build !linux

package hw

import "errors"

// GPIOBoard is not available on non-Linux platforms.
type GPIOBoard struct{}

// OpenGPIO returns an error on non-Linux platforms.
func OpenGPIO(chip string) (*GPIOBoard, error) {
	return nil, errors.New("hw: gpio requires Linux")
}

func (b *GPIOBoard) Input(pin int) (Input, error) {
	return nil, errors.New("hw: gpio not supported")
}

func (b *GPIOBoard) Output(pin int) (Output, error) {
	return nil, errors.New("hw: gpio not supported")
}

func (b *GPIOBoard) Close() error {
	return nil
}
