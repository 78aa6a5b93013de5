package alpharx_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"

	"github.com/robotalks/alpharx/pkg/alpharx"
	"github.com/robotalks/alpharx/pkg/alpharx/sim"
	"github.com/robotalks/alpharx/pkg/rx"
)

func newDriver(trace bool) (*alpharx.Driver, *sim.Chip) {
	chip := sim.NewChip()
	chip.Trace = trace
	return alpharx.New(chip, chip), chip
}

// commandTrace is the exact sequence SendCommand must produce.
func commandTrace(cmd1, cmd2 byte) []sim.Event {
	evs := []sim.Event{sim.Set(alpharx.LineSelect, gpio.Low), sim.Delay(1)}
	for _, b := range []byte{cmd1, cmd2} {
		for mask := byte(0x80); mask > 0; mask >>= 1 {
			evs = append(evs,
				sim.Set(alpharx.LineDataOut, gpio.Level(b&mask != 0)),
				sim.Delay(1),
				sim.Set(alpharx.LineClock, gpio.High),
				sim.Delay(1),
				sim.Set(alpharx.LineClock, gpio.Low),
			)
		}
	}
	return append(evs,
		sim.Set(alpharx.LineSelect, gpio.High),
		sim.Set(alpharx.LineDataOut, gpio.Low),
		sim.Set(alpharx.LineClock, gpio.Low),
		sim.Delay(1),
	)
}

func TestSendCommandTrace(t *testing.T) {
	d, chip := newDriver(true)
	d.SendCommand(0xc0, 0xc3)
	require.Equal(t, commandTrace(0xc0, 0xc3), chip.Events())
	require.Equal(t, [][2]byte{{0xc0, 0xc3}}, chip.Frames())
}

func TestSendCommandLeavesLinesIdle(t *testing.T) {
	d, chip := newDriver(false)
	for cmd1 := 0; cmd1 < 256; cmd1++ {
		for _, cmd2 := range []byte{0x00, 0x01, 0x5a, 0x80, 0xa5, 0xff, byte(cmd1)} {
			d.SendCommand(byte(cmd1), cmd2)
			require.Equal(t, gpio.High, chip.Level(alpharx.LineSelect))
			require.Equal(t, gpio.Low, chip.Level(alpharx.LineDataOut))
			require.Equal(t, gpio.Low, chip.Level(alpharx.LineClock))
			frames := chip.Frames()
			require.Equal(t, [2]byte{byte(cmd1), cmd2}, frames[len(frames)-1])
		}
	}
}

// initTrace is the exact sequence Init must produce for table.
func initTrace(table alpharx.Table) []sim.Event {
	var evs []sim.Event
	for _, step := range table {
		if step.PauseMicros > 0 {
			evs = append(evs, sim.Delay(step.PauseMicros))
		}
		evs = append(evs, commandTrace(step.Cmd1, step.Cmd2)...)
	}
	return evs
}

func TestInitTrace(t *testing.T) {
	table := alpharx.Table{
		{Cmd1: 0x89, Cmd2: 0x3b},
		{Cmd1: 0x00, Cmd2: 0x00},
		{Cmd1: 0xce, Cmd2: 0xf8, PauseMicros: 2},
		{Cmd1: 0xce, Cmd2: 0xfb, PauseMicros: 2},
		{Cmd1: 0xc0, Cmd2: 0xc3, PauseMicros: 2},
	}
	d, chip := newDriver(true)
	d.Init(table)
	require.Equal(t, initTrace(table), chip.Events())
	require.Equal(t, [][2]byte{
		{0x89, 0x3b}, {0x00, 0x00}, {0xce, 0xf8}, {0xce, 0xfb}, {0xc0, 0xc3},
	}, chip.Frames())
}

func TestDefaultTableTrace(t *testing.T) {
	d, chip := newDriver(true)
	d.Init(rx.DefaultTable)
	events := chip.Events()
	require.Equal(t, initTrace(rx.DefaultTable), events)

	// the FIFO restart writes close the trace, each preceded by a 2us pause.
	var tail []sim.Event
	for _, cmd := range [][2]byte{{0xce, 0xf8}, {0xce, 0xfb}, {0xc0, 0xc3}} {
		tail = append(tail, sim.Delay(2))
		tail = append(tail, commandTrace(cmd[0], cmd[1])...)
	}
	require.GreaterOrEqual(t, len(events), len(tail))
	require.Equal(t, tail, events[len(events)-len(tail):])

	var pauses int
	for _, ev := range events {
		if ev == sim.Delay(2) {
			pauses++
		}
	}
	require.Equal(t, 3, pauses)
	require.Len(t, chip.Frames(), len(rx.DefaultTable))
}

func TestReceiveValid(t *testing.T) {
	d, chip := newDriver(false)
	for label := byte(0); label < 16; label++ {
		for v := 0; v < 256; v++ {
			value := byte(v)
			chip.Transmit(label, value)
			res, pkt := d.ReceivePacket(time.Millisecond)
			require.Equal(t, alpharx.Valid, res, "label=%d value=%d", label, value)
			require.Equal(t, alpharx.Packet{label, value}, pkt)
			require.Equal(t, gpio.High, chip.Level(alpharx.LineFrameAdvance))
		}
	}
	require.Zero(t, chip.Pending())
}

func TestReceiveBitFlips(t *testing.T) {
	// independent oracle: recompute over the flipped frame nibble by nibble.
	oracle := func(b1, b2 byte) bool {
		return b1>>4 == (b2>>4)^(b2&0xf)^(b1&0xf)
	}
	d, chip := newDriver(false)
	var undetected int
	for label := byte(0); label < 16; label++ {
		for v := 0; v < 256; v += 7 {
			frame := alpharx.Encode(label, byte(v))
			for bit := uint(0); bit < 16; bit++ {
				b1, b2 := frame[0], frame[1]
				if bit < 8 {
					b1 ^= 1 << bit
				} else {
					b2 ^= 1 << (bit - 8)
				}
				chip.Inject(b1, b2)
				res, pkt := d.ReceivePacket(time.Millisecond)
				require.Equal(t, alpharx.Packet{b1 & 0xf, b2}, pkt)
				if oracle(b1, b2) {
					undetected++
					require.Equal(t, alpharx.Valid, res)
				} else {
					require.Equal(t, alpharx.ChecksumMismatch, res, "frame %02x %02x", b1, b2)
				}
			}
		}
	}
	// a single flip always changes exactly one side of the XOR equation.
	require.Zero(t, undetected)
}

func TestReceiveMismatchKeepsPacket(t *testing.T) {
	d, chip := newDriver(false)
	chip.Inject(0x03, 0x42)
	res, pkt := d.ReceivePacket(time.Millisecond)
	require.Equal(t, alpharx.ChecksumMismatch, res)
	require.Equal(t, byte(3), pkt.Label())
	require.Equal(t, byte(0x42), pkt.Value())
}

func TestReceiveTimeout(t *testing.T) {
	for _, timeout := range []time.Duration{0, time.Microsecond, time.Millisecond, 50 * time.Millisecond} {
		t.Run(timeout.String(), func(t *testing.T) {
			d, chip := newDriver(false)
			res, pkt := d.ReceivePacket(timeout)
			require.Equal(t, alpharx.NoData, res)
			require.Equal(t, alpharx.Packet{0, 0}, pkt)
			require.True(t, chip.Elapsed() >= timeout)
			require.Equal(t, gpio.High, chip.Level(alpharx.LineSelect))
		})
	}
}

func TestReceiveZeroTimeoutWithWaitingFrame(t *testing.T) {
	d, chip := newDriver(false)
	chip.Transmit(5, 200)
	res, pkt := d.ReceivePacketMillis(0)
	require.Equal(t, alpharx.Valid, res)
	require.Equal(t, alpharx.Packet{5, 200}, pkt)
}

func TestReceiveWaitsForReady(t *testing.T) {
	d, chip := newDriver(false)
	chip.ReadyDelay = 20
	chip.Transmit(1, 2)

	res, _ := d.ReceivePacket(time.Millisecond)
	require.Equal(t, alpharx.NoData, res)
	require.Equal(t, 1, chip.Pending())

	res, pkt := d.ReceivePacket(10 * time.Millisecond)
	require.Equal(t, alpharx.Valid, res)
	require.Equal(t, alpharx.Packet{1, 2}, pkt)
}

func TestReadStatus(t *testing.T) {
	d, chip := newDriver(true)
	chip.Status = 0xa160
	s := d.ReadStatus()
	require.Equal(t, [2]byte{0xa1, 0x60}, s.Bytes())
	require.Equal(t, gpio.High, chip.Level(alpharx.LineSelect))
	require.Equal(t, gpio.Low, chip.Level(alpharx.LineDataOut))

	evs := chip.Events()
	require.Equal(t, []sim.Event{
		sim.Set(alpharx.LineSelect, gpio.Low),
		sim.Delay(1),
		sim.Set(alpharx.LineDataOut, gpio.Low),
		sim.Delay(1),
	}, evs[:4])
	for _, ev := range evs {
		require.NotEqual(t, alpharx.LineFrameAdvance, ev.Line, "status read must not touch frame advance")
	}
	// status reads latch as an all-zero command.
	require.Equal(t, [][2]byte{{0, 0}}, chip.Frames())
}

func TestStatusWord(t *testing.T) {
	s := alpharx.StatusFrom(0xa1, 0x60)
	require.Equal(t, alpharx.StatusWord(0xa160), s)
	require.NotZero(t, s&alpharx.FIFOLimit)
	require.Zero(t, s&alpharx.FIFOOverflow)
	require.NotZero(t, s&alpharx.WakeupOverflow)
	require.NotZero(t, s&alpharx.ClockLock)
	require.Zero(t, s&alpharx.AFCToggle)
	require.NotZero(t, s&alpharx.AFCStable)
	require.NotZero(t, s&alpharx.AFCSign)
	require.Equal(t, -32, s.Offset())
	require.Equal(t, "FFIT+ FFOV- WKUP+ LBD- FFEM- RSSI- DQD- CRL+ ATGL- ASAME+ Offset:-32", s.String())

	require.Equal(t, 5, alpharx.StatusWord(0x0005).Offset())
	require.Equal(t, -1, alpharx.StatusWord(0x003f).Offset())
}

func TestChecksum(t *testing.T) {
	testCases := []struct {
		label, value, sum byte
	}{
		{0, 0, 0},
		{0, 0x12, 0x3},
		{0xf, 0xff, 0xf},
		{0x3, 0x42, 0x5},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.sum, alpharx.Checksum(tc.label, tc.value))
		frame := alpharx.Encode(tc.label, tc.value)
		pkt, res := alpharx.Decode(frame[0], frame[1])
		require.Equal(t, alpharx.Valid, res)
		require.Equal(t, alpharx.Packet{tc.label, tc.value}, pkt)
	}
	require.Equal(t, "ChecksumMismatch", alpharx.ChecksumMismatch.String())
	require.Equal(t, "Result(9)", alpharx.Result(9).String())
}
