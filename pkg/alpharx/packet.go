package alpharx

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
)

// Result is the outcome of a packet receive.
type Result byte

// Results
const (
	// NoData means nothing arrived before the timeout.
	NoData Result = 0
	// Valid means the checksum verified.
	Valid Result = 1
	// ChecksumMismatch means a frame arrived but failed the checksum.
	// The packet still holds the decoded, untrusted, values.
	ChecksumMismatch Result = 2
)

func (r Result) String() string {
	switch r {
	case NoData:
		return "NoData"
	case Valid:
		return "Valid"
	case ChecksumMismatch:
		return "ChecksumMismatch"
	}
	return fmt.Sprintf("Result(%d)", byte(r))
}

// Packet is a received packet: label in byte 0 (low nibble) and value in
// byte 1.
type Packet [2]byte

// Label returns the 4-bit label.
func (p Packet) Label() byte { return p[0] }

// Value returns the 8-bit value.
func (p Packet) Value() byte { return p[1] }

func (p Packet) String() string {
	return fmt.Sprintf("label=%d value=%d", p[0], p[1])
}

// Checksum computes the 4-bit checksum the transmitter sends for a label
// and a value.
func Checksum(label, value byte) byte {
	return ((value >> 4) ^ (value & 0x0f) ^ label) & 0x0f
}

// Encode builds the two-byte wire frame for a label and a value: checksum
// in the high nibble of the first byte, label in its low nibble.
func Encode(label, value byte) [2]byte {
	label &= 0x0f
	return [2]byte{Checksum(label, value)<<4 | label, value}
}

// Decode splits a wire frame into a packet and verifies its checksum.
func Decode(inByte1, inByte2 byte) (Packet, Result) {
	received := inByte1 >> 4
	label := inByte1 & 0x0f
	pkt := Packet{label, inByte2}
	if (inByte2>>4)^(inByte2&0x0f)^label == received {
		return pkt, Valid
	}
	return pkt, ChecksumMismatch
}

// ReceivePacket waits up to timeout for the ready line and reads one frame
// from the FIFO. The ready line is sampled before the timeout is checked,
// so a zero timeout still picks up a frame which is already waiting.
func (d *Driver) ReceivePacket(timeout time.Duration) (Result, Packet) {
	var pkt Packet
	d.pins.Set(LineSelect, gpio.High)

	start := d.clock.Now()
	for d.pins.Get(LineReady) == gpio.High {
		if d.clock.Now().Sub(start) >= timeout {
			return NoData, pkt
		}
	}

	inByte1 := d.readByte()
	inByte2 := d.readByte()
	pkt, res := Decode(inByte1, inByte2)
	if glog.V(2) {
		glog.Infof("frame %02x %02x: %s %s", inByte1, inByte2, res, pkt)
	}
	return res, pkt
}

// ReceivePacketMillis is ReceivePacket with a timeout in milliseconds.
func (d *Driver) ReceivePacketMillis(ms uint32) (Result, Packet) {
	return d.ReceivePacket(time.Duration(ms) * time.Millisecond)
}
