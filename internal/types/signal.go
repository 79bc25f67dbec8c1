package types

import "time"

type SignalType string

const (
	// SignalTypeBuy tells the simulator to open a long position
	SignalTypeBuy SignalType = "buy"
	// SignalTypeSell tells the simulator to close the open position
	SignalTypeSell SignalType = "sell"
	// SignalTypeHold tells the simulator to take no action
	SignalTypeHold SignalType = "hold"
)

// Signal is one entry of a signal series, aligned 1:1 by position with the
// price series it was generated from.
type Signal struct {
	// Time is the time of the bar the signal belongs to
	Time time.Time
	// Type is the type of the signal
	Type SignalType
	// Name is the name of the strategy that generated the signal
	Name string
	// Reason is a human-readable explanation of why the signal fired
	Reason string
}
