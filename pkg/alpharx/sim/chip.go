// Package sim simulates the serial side of an AlphaRX receiver.
package sim

import (
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/robotalks/alpharx/pkg/alpharx"
)

// Chip simulates the receiver as seen through its lines. It implements
// both alpharx.Pins and alpharx.Clock. Time only moves when the driver
// asks for it: DelayMicros advances by the delay and every Now advances
// by PollStep, so polling loops terminate deterministically.
type Chip struct {
	// Status is shifted out during a status read.
	Status alpharx.StatusWord
	// PollStep is how far the clock moves on every Now.
	PollStep time.Duration
	// ReadyDelay is the number of ready polls before a waiting frame is
	// signalled.
	ReadyDelay int
	// Trace enables recording of events.
	Trace bool

	levels [alpharx.NumLines]gpio.Level
	dataIn gpio.Level
	now    time.Time
	events []Event

	shiftIn   uint16
	bitsIn    int
	frames    [][2]byte
	statusOut uint16

	fifo        []byte
	fifoOut     byte
	fifoBits    int
	fifoReading bool
	polls       int

	lock sync.Mutex
}

// Epoch is the simulated time a new Chip starts at.
var Epoch = time.Unix(0, 0)

// NewChip creates an idle Chip.
func NewChip() *Chip {
	c := &Chip{
		PollStep: 100 * time.Microsecond,
		dataIn:   gpio.High,
		now:      Epoch,
	}
	c.levels[alpharx.LineSelect] = gpio.High
	c.levels[alpharx.LineDataOut] = gpio.High
	c.levels[alpharx.LineFrameAdvance] = gpio.High
	c.levels[alpharx.LineReady] = gpio.High
	return c
}

// Transmit queues a correctly framed packet as if it came over the air.
func (c *Chip) Transmit(label, value byte) {
	frame := alpharx.Encode(label, value)
	c.Inject(frame[0], frame[1])
}

// Inject queues two raw bytes into the receive FIFO.
func (c *Chip) Inject(b1, b2 byte) {
	c.lock.Lock()
	c.fifo = append(c.fifo, b1, b2)
	c.lock.Unlock()
}

// Pending returns the number of queued frames.
func (c *Chip) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.fifo) / 2
}

// Frames returns the command frames latched so far.
func (c *Chip) Frames() [][2]byte {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([][2]byte(nil), c.frames...)
}

// Events returns the recorded trace.
func (c *Chip) Events() []Event {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]Event(nil), c.events...)
}

// Reset clears recorded events and latched frames.
func (c *Chip) Reset() {
	c.lock.Lock()
	c.events, c.frames = nil, nil
	c.lock.Unlock()
}

// Level returns the level currently driven on a line without tracing.
func (c *Chip) Level(l alpharx.Line) gpio.Level {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.levels[l]
}

// Elapsed returns the simulated time since Epoch.
func (c *Chip) Elapsed() time.Duration {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now.Sub(Epoch)
}

// Set implements alpharx.Pins.
func (c *Chip) Set(l alpharx.Line, lvl gpio.Level) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.record(Set(l, lvl))
	prev := c.levels[l]
	c.levels[l] = lvl
	if prev == lvl {
		return
	}
	switch l {
	case alpharx.LineSelect:
		// a partial frame is dropped on deselect.
		c.shiftIn, c.bitsIn = 0, 0
		if lvl == gpio.Low {
			c.statusOut = uint16(c.Status)
		}
	case alpharx.LineFrameAdvance:
		if lvl == gpio.Low {
			if c.levels[alpharx.LineSelect] == gpio.High && len(c.fifo) > 0 {
				c.fifoOut, c.fifoBits, c.fifoReading = c.fifo[0], 0, true
			}
		} else if c.fifoReading {
			c.fifoReading = false
			if c.fifoBits >= 8 {
				c.fifo = c.fifo[1:]
				c.polls = 0
			}
		}
	case alpharx.LineClock:
		if lvl == gpio.High {
			c.risingEdge()
		}
	}
}

func (c *Chip) risingEdge() {
	switch {
	case c.levels[alpharx.LineSelect] == gpio.Low:
		c.shiftIn <<= 1
		if c.levels[alpharx.LineDataOut] {
			c.shiftIn |= 1
		}
		if c.bitsIn++; c.bitsIn == 16 {
			c.frames = append(c.frames, [2]byte{byte(c.shiftIn >> 8), byte(c.shiftIn)})
			c.shiftIn, c.bitsIn = 0, 0
		}
		c.dataIn = gpio.Level(c.statusOut&0x8000 != 0)
		c.statusOut <<= 1
	case c.fifoReading:
		c.dataIn = gpio.Level(c.fifoOut&0x80 != 0)
		c.fifoOut <<= 1
		c.fifoBits++
	}
}

// Get implements alpharx.Pins.
func (c *Chip) Get(l alpharx.Line) gpio.Level {
	c.lock.Lock()
	defer c.lock.Unlock()
	var lvl gpio.Level
	switch l {
	case alpharx.LineDataIn:
		lvl = c.dataIn
	case alpharx.LineReady:
		lvl = gpio.High
		if len(c.fifo) >= 2 {
			if c.polls >= c.ReadyDelay {
				lvl = gpio.Low
			}
			c.polls++
		}
	default:
		lvl = c.levels[l]
	}
	c.record(Get(l, lvl))
	return lvl
}

// Now implements alpharx.Clock.
func (c *Chip) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	t := c.now
	c.now = c.now.Add(c.PollStep)
	return t
}

// DelayMicros implements alpharx.Clock.
func (c *Chip) DelayMicros(us int) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.record(Delay(us))
	c.now = c.now.Add(time.Duration(us) * time.Microsecond)
}

func (c *Chip) record(ev Event) {
	if c.Trace {
		c.events = append(c.events, ev)
	}
}
