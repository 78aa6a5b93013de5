package rx

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"

	"github.com/robotalks/alpharx/pkg/alpharx"
	"github.com/robotalks/alpharx/pkg/alpharx/sim"
	"github.com/robotalks/alpharx/pkg/msgs"
)

func TestDefaultTable(t *testing.T) {
	chip := sim.NewChip()
	dev := NewDevice(chip, chip, nil)
	require.NoError(t, dev.Init())
	frames := chip.Frames()
	require.Len(t, frames, len(DefaultTable))
	for n, step := range DefaultTable {
		require.Equal(t, [2]byte{step.Cmd1, step.Cmd2}, frames[n])
	}
	require.Equal(t, [2]byte{0xC0, 0xC3}, frames[len(frames)-1])
}

func TestParseTable(t *testing.T) {
	table, err := ParseTable([]byte(`
steps:
  - {cmd1: 0x89, cmd2: 0x3B}
  - {cmd1: 0xCE, cmd2: 0xF8, pause_us: 2}
`))
	require.NoError(t, err)
	require.Equal(t, alpharx.Table{
		{Cmd1: 0x89, Cmd2: 0x3B},
		{Cmd1: 0xCE, Cmd2: 0xF8, PauseMicros: 2},
	}, table)

	testCases := []struct {
		name string
		data string
	}{
		{"empty", "steps: []"},
		{"negative pause", "steps: [{cmd1: 1, cmd2: 2, pause_us: -1}]"},
		{"out of range", "steps: [{cmd1: 0x100, cmd2: 2}]"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTable([]byte(tc.data))
			require.Error(t, err)
		})
	}
}

func TestLoadTable(t *testing.T) {
	table, err := LoadTable("")
	require.NoError(t, err)
	require.Equal(t, DefaultTable, table)

	fn := filepath.Join(t.TempDir(), "table.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("steps:\n  - {cmd1: 0xC0, cmd2: 0xC3}\n"), 0644))
	table, err = LoadTable(fn)
	require.NoError(t, err)
	require.Equal(t, alpharx.Table{{Cmd1: 0xC0, Cmd2: 0xC3}}, table)

	_, err = LoadTable(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

type brokenPins struct {
	*sim.Chip
	err error
}

func (p *brokenPins) Err() error { return p.err }

func TestDeviceSurfacesBackendErrors(t *testing.T) {
	chip := sim.NewChip()
	pins := &brokenPins{Chip: chip}
	dev := NewDevice(pins, chip, nil)
	require.NoError(t, dev.SendCommand(0xC0, 0xC3))

	pins.err = errors.New("line gone")
	require.EqualError(t, dev.Init(), "line gone")
	require.EqualError(t, dev.SendCommand(0xC0, 0xC3), "line gone")
	_, err := dev.ReadStatus()
	require.EqualError(t, err, "line gone")
	chip.Transmit(1, 2)
	res, pkt, err := dev.Receive(time.Millisecond)
	require.EqualError(t, err, "line gone")
	require.Equal(t, alpharx.NoData, res)
	require.Equal(t, alpharx.Packet{}, pkt)
}

func TestDeviceReadStatus(t *testing.T) {
	chip := sim.NewChip()
	chip.Status = alpharx.FIFOLimit | alpharx.ClockLock | alpharx.AFCStable
	dev := NewDevice(chip, chip, nil)
	s, err := dev.ReadStatus()
	require.NoError(t, err)
	require.Equal(t, chip.Status, s)
	require.Equal(t, gpio.High, chip.Level(alpharx.LineSelect))
}

type collector struct {
	lock   sync.Mutex
	events []msgs.Message
	cancel func()
	limit  int
}

func (c *collector) SendEvent(ctx context.Context, msg msgs.Message) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.events = append(c.events, msg)
	if len(c.events) >= c.limit {
		c.cancel()
	}
	return nil
}

func packets(events []msgs.Message) [][3]uint32 {
	var res [][3]uint32
	for _, ev := range events {
		if p, ok := ev.(*msgs.PacketEvent); ok {
			res = append(res, [3]uint32{p.Label, p.Value, p.Result})
		}
	}
	return res
}

func TestReceiverPublishes(t *testing.T) {
	testCases := []struct {
		name    string
		corrupt bool
		expect  [][3]uint32
	}{
		{"valid only", false, [][3]uint32{{1, 10, 1}, {2, 20, 1}}},
		{"with corrupt", true, [][3]uint32{{1, 10, 1}, {3, 0x42, 2}, {2, 20, 1}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			chip := sim.NewChip()
			chip.Transmit(1, 10)
			chip.Inject(0x03, 0x42)
			chip.Transmit(2, 20)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			c := &collector{cancel: cancel, limit: len(tc.expect)}
			r := &Receiver{
				Device:         NewDevice(chip, chip, nil),
				Publisher:      &PublisherMux{Publishers: []Publisher{c}},
				PollTimeout:    time.Millisecond,
				PublishCorrupt: tc.corrupt,
			}
			require.Equal(t, context.Canceled, r.Run(ctx))
			require.Equal(t, tc.expect, packets(c.events))
			stats := r.Stats()
			require.Equal(t, uint64(2), stats.Valid)
			require.Equal(t, uint64(1), stats.Corrupt)
			require.Equal(t, uint64(3), stats.Polls)
			require.Zero(t, chip.Pending())
		})
	}
}

func TestReceiverCountsTimeouts(t *testing.T) {
	chip := sim.NewChip()
	r := &Receiver{Device: NewDevice(chip, chip, nil)}
	for i := 0; i < 3; i++ {
		require.NoError(t, r.Poll(context.Background(), time.Millisecond))
	}
	require.Equal(t, Stats{Polls: 3, Timeouts: 3}, r.Stats())
}

func TestReceiverPublishStatus(t *testing.T) {
	chip := sim.NewChip()
	chip.Status = 0xa160
	var got []msgs.Message
	r := &Receiver{
		Device: NewDevice(chip, chip, nil),
		Publisher: PublisherFunc(func(ctx context.Context, msg msgs.Message) error {
			got = append(got, msg)
			return nil
		}),
	}
	require.NoError(t, r.PublishStatus(context.Background()))
	require.Len(t, got, 1)
	require.Equal(t, uint32(0xa160), got[0].(*msgs.StatusEvent).Word)
}

func TestPublisherMuxAggregates(t *testing.T) {
	fail := PublisherFunc(func(context.Context, msgs.Message) error { return errors.New("down") })
	var count int
	ok := PublisherFunc(func(context.Context, msgs.Message) error { count++; return nil })
	mux := &PublisherMux{}
	mux.Add(fail, ok, fail)
	err := mux.SendEvent(context.Background(), &msgs.StatusEvent{})
	require.EqualError(t, err, "Multiple errors:\ndown\ndown")
	require.Equal(t, 1, count)
}

func TestCommands(t *testing.T) {
	chip := sim.NewChip()
	chip.Status = 0x8123
	cmds := &Commands{Device: NewDevice(chip, chip, alpharx.Table{{Cmd1: 0xC0, Cmd2: 0xC3}})}
	ctx := context.Background()

	reply, err := cmds.HandleCommand(ctx, &msgs.SendCommand{Cmd1: 0xCC, Cmd2: 0x0E})
	require.NoError(t, err)
	require.Equal(t, &msgs.CommandOK{}, reply)

	_, err = cmds.HandleCommand(ctx, &msgs.SendCommand{Cmd1: 0x1CC})
	require.Error(t, err)

	reply, err = cmds.HandleCommand(ctx, &msgs.InitDefaults{})
	require.NoError(t, err)
	require.Equal(t, &msgs.CommandOK{}, reply)
	require.Equal(t, [][2]byte{{0xCC, 0x0E}, {0xC0, 0xC3}}, chip.Frames())

	reply, err = cmds.HandleCommand(ctx, &msgs.StatusQuery{})
	require.NoError(t, err)
	require.Equal(t, uint32(0x8123), reply.(*msgs.StatusReply).Status.Word)

	_, err = cmds.HandleCommand(ctx, &msgs.CommandOK{})
	require.Equal(t, msgs.ErrUnsupportedCommand, err)
}
