package alpharx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

// loopback latches SDO on rising clock edges and plays the latched bits
// back on SDI while frame advance is low.
type loopback struct {
	levels [NumLines]gpio.Level
	bits   []gpio.Level
	in     gpio.Level
	delays int
}

func newLoopback() *loopback {
	lb := &loopback{}
	lb.levels[LineFrameAdvance] = gpio.High
	return lb
}

func (lb *loopback) Set(l Line, lvl gpio.Level) {
	rising := l == LineClock && lvl == gpio.High && lb.levels[l] == gpio.Low
	lb.levels[l] = lvl
	if !rising {
		return
	}
	if lb.levels[LineFrameAdvance] == gpio.High {
		lb.bits = append(lb.bits, lb.levels[LineDataOut])
	} else if len(lb.bits) > 0 {
		lb.in, lb.bits = lb.bits[0], lb.bits[1:]
	}
}

func (lb *loopback) Get(l Line) gpio.Level {
	if l == LineDataIn {
		return lb.in
	}
	return lb.levels[l]
}

func (lb *loopback) Now() time.Time { return time.Time{} }

func (lb *loopback) DelayMicros(us int) { lb.delays += us }

func TestCodecRoundTrip(t *testing.T) {
	lb := newLoopback()
	d := New(lb, lb)
	for v := 0; v < 256; v++ {
		d.sendByte(byte(v))
		require.Len(t, lb.bits, 8)
		require.Equal(t, byte(v), d.readByte(), "byte %02x", v)
		require.Empty(t, lb.bits)
		require.Equal(t, gpio.High, lb.levels[LineFrameAdvance])
		require.Equal(t, gpio.Low, lb.levels[LineClock])
	}
}

func TestCodecBitOrder(t *testing.T) {
	lb := newLoopback()
	d := New(lb, lb)
	d.sendByte(0xa1)
	require.Equal(t, []gpio.Level{
		gpio.High, gpio.Low, gpio.High, gpio.Low,
		gpio.Low, gpio.Low, gpio.Low, gpio.High,
	}, lb.bits)
	// two 1us holds per bit.
	require.Equal(t, 16, lb.delays)
}
