package alpharx

import (
	"strconv"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
)

// StatusWord is the two-byte status of the receiver, byte 0 in the high
// half.
type StatusWord uint16

// Status bits of byte 0
const (
	ClockLock      StatusWord = 1 << (iota + 8) // Clock recovery locked.
	DataQuality                                 // Data quality detector saw a good signal.
	SignalStrength                              // Signal above the programmed RSSI limit.
	FIFOEmpty                                   // FIFO is empty.
	LowBattery                                  // Supply below the programmed limit.
	WakeupOverflow                              // Wake-up timer overflow.
	FIFOOverflow                                // FIFO overflow.
	FIFOLimit                                   // FIFO reached the programmed bit count.
)

// Status bits of byte 1
const (
	AFCSign   StatusWord = 1 << (iota + 5) // Sign of the AFC offset.
	AFCStable                              // AFC measured the same offset twice.
	AFCToggle                              // Toggles in each AFC cycle.

	// AFCOffsetMask selects the offset magnitude bits.
	AFCOffsetMask StatusWord = 0x1f
)

// StatusFrom builds a StatusWord from the two bytes in read order.
func StatusFrom(b0, b1 byte) StatusWord {
	return StatusWord(b0)<<8 | StatusWord(b1)
}

// Bytes returns the status in read order.
func (s StatusWord) Bytes() [2]byte {
	return [2]byte{byte(s >> 8), byte(s)}
}

// Offset returns the AFC offset to be added to the frequency control word.
func (s StatusWord) Offset() int {
	off := int(s & (AFCSign | AFCOffsetMask))
	if s&AFCSign != 0 {
		off -= 64
	}
	return off
}

func flags(f string, mask, b uint16) string {
	buf := make([]byte, len(f))
	m := uint16(0x8000)
	for i := range buf {
		if f[i] != '+' {
			buf[i] = f[i]
			continue
		}
		for mask&m == 0 {
			m >>= 1
		}
		if b&m == 0 {
			buf[i] = '-'
		} else {
			buf[i] = '+'
		}
		m >>= 1
	}
	return string(buf)
}

func (s StatusWord) String() string {
	return flags(
		"FFIT+ FFOV+ WKUP+ LBD+ FFEM+ RSSI+ DQD+ CRL+ ATGL+ ASAME+ Offset:",
		0xffc0, uint16(s),
	) + strconv.Itoa(s.Offset())
}

// ReadStatus clocks the status word out of the receiver. SDO is held low
// for the whole read, which the chip takes as a status read rather than a
// FIFO read, so the frame advance line is left alone.
func (d *Driver) ReadStatus() StatusWord {
	d.pins.Set(LineSelect, gpio.Low)
	d.clock.DelayMicros(1)
	d.pins.Set(LineDataOut, gpio.Low)
	d.clock.DelayMicros(1)

	var out [2]byte
	for n := range out {
		for i := 0; i < 8; i++ {
			d.pins.Set(LineClock, gpio.High)
			d.clock.DelayMicros(1)
			var bit byte
			if d.pins.Get(LineDataIn) {
				bit = 1
			}
			out[n] = out[n]*2 + bit
			d.pins.Set(LineClock, gpio.Low)
			d.clock.DelayMicros(1)
		}
	}

	d.pins.Set(LineSelect, gpio.High)
	d.pins.Set(LineDataOut, gpio.Low)
	s := StatusFrom(out[0], out[1])
	glog.V(3).Infof("status %s", s)
	return s
}
