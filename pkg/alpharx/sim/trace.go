package sim

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"

	"github.com/robotalks/alpharx/pkg/alpharx"
)

// Op is the kind of a traced operation.
type Op int

// Ops
const (
	OpSet Op = iota
	OpGet
	OpDelay
)

// Event is one traced line operation or delay.
type Event struct {
	Op     Op
	Line   alpharx.Line
	Level  gpio.Level
	Micros int
}

// Set is the trace of driving a line.
func Set(l alpharx.Line, lvl gpio.Level) Event {
	return Event{Op: OpSet, Line: l, Level: lvl}
}

// Get is the trace of sampling a line.
func Get(l alpharx.Line, lvl gpio.Level) Event {
	return Event{Op: OpGet, Line: l, Level: lvl}
}

// Delay is the trace of a delay.
func Delay(us int) Event {
	return Event{Op: OpDelay, Micros: us}
}

func (e Event) String() string {
	switch e.Op {
	case OpSet:
		return fmt.Sprintf("%s<-%s", e.Line, e.Level)
	case OpGet:
		return fmt.Sprintf("%s->%s", e.Line, e.Level)
	case OpDelay:
		return fmt.Sprintf("delay %dus", e.Micros)
	}
	return fmt.Sprintf("Event(%d)", e.Op)
}
