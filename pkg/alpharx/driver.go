package alpharx

import "periph.io/x/conn/v3/gpio"

// Driver runs the serial protocol of one receiver.
type Driver struct {
	pins  Pins
	clock Clock
}

// New creates a Driver over a bound pin set.
func New(pins Pins, clock Clock) *Driver {
	return &Driver{pins: pins, clock: clock}
}

// sendBit presents a bit on SDO, the chip latches it on the rising edge.
func (d *Driver) sendBit(v bool) {
	d.pins.Set(LineDataOut, gpio.Level(v))
	d.clock.DelayMicros(1)
	d.pins.Set(LineClock, gpio.High)
	d.clock.DelayMicros(1)
	d.pins.Set(LineClock, gpio.Low)
}

func (d *Driver) readBit() byte {
	d.pins.Set(LineClock, gpio.High)
	d.clock.DelayMicros(1)
	in := d.pins.Get(LineDataIn)
	d.pins.Set(LineClock, gpio.Low)
	d.clock.DelayMicros(1)
	if in {
		return 1
	}
	return 0
}

// sendByte clocks a byte out MSB first.
func (d *Driver) sendByte(v byte) {
	for mask := byte(0x80); mask > 0; mask >>= 1 {
		d.sendBit(v&mask != 0)
	}
}

// readByte clocks one byte out of the receive FIFO.
func (d *Driver) readByte() byte {
	d.clock.DelayMicros(1)
	d.pins.Set(LineFrameAdvance, gpio.Low)
	var b byte
	for i := 0; i < 8; i++ {
		b = b*2 + d.readBit()
	}
	d.pins.Set(LineFrameAdvance, gpio.High)
	return b
}
