package hw

import "time"

// NullBoard is a Board whose inputs never fire and whose outputs go nowhere.
// It lets the daemon run on machines without GPIO hardware.
type NullBoard struct{}

func (NullBoard) Input(pin int) (Input, error)   { return nullInput{}, nil }
func (NullBoard) Output(pin int) (Output, error) { return nullOutput{}, nil }
func (NullBoard) Close() error                   { return nil }

// NullOutput returns an Output that goes nowhere, for actors without a
// physical signal line.
func NullOutput() Output { return nullOutput{} }

type nullInput struct{}

func (nullInput) WaitForPress(timeout time.Duration) bool {
	time.Sleep(timeout)
	return false
}

func (nullInput) Close() error { return nil }

type nullOutput struct{}

func (nullOutput) On()          {}
func (nullOutput) Off()         {}
func (nullOutput) Close() error { return nil }
