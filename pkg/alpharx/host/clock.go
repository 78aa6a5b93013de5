package host

import (
	"time"

	"periph.io/x/host/v3/cpu"
)

// SpinClock is the wall clock with busy-wait microsecond delays. Sleeping
// is far too coarse for the 1us holds of the serial protocol.
type SpinClock struct{}

// Now implements alpharx.Clock.
func (SpinClock) Now() time.Time {
	return time.Now()
}

// DelayMicros implements alpharx.Clock.
func (SpinClock) DelayMicros(us int) {
	cpu.Nanospin(time.Duration(us) * time.Microsecond)
}
