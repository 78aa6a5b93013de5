package alpharx

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Line identifies one of the receiver's signal lines.
type Line int

// Lines
const (
	LineSelect Line = iota
	LineDataOut
	LineDataIn
	LineClock
	LineReady
	LineFrameAdvance

	// NumLines is the number of lines in a pin set.
	NumLines int = iota
)

var lineNames = [NumLines]string{"nSEL", "SDO", "SDI", "SCK", "nIRQ", "nFFS"}

func (l Line) String() string {
	if l < 0 || int(l) >= NumLines {
		return "Line(?)"
	}
	return lineNames[l]
}

// Pins drives and samples the lines bound to one receiver.
type Pins interface {
	// Set drives an output line.
	Set(Line, gpio.Level)
	// Get samples a line.
	Get(Line) gpio.Level
}

// Clock provides time for the driver. Delays are minimums.
type Clock interface {
	Now() time.Time
	DelayMicros(us int)
}
