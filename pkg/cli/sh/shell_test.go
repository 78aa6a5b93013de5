package sh

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/alpharx/pkg/alpharx"
	"github.com/robotalks/alpharx/pkg/env"
	"github.com/robotalks/alpharx/pkg/mqtt"
	"github.com/robotalks/alpharx/pkg/msgs"
)

func TestFormatMessage(t *testing.T) {
	testCases := []struct {
		name   string
		msg    msgs.Message
		asJSON bool
		out    string
	}{
		{"ok", &msgs.CommandOK{}, false, "OK"},
		{"packet", &msgs.PacketEvent{Label: 3, Value: 66, Result: 2}, false, "ChecksumMismatch label=3 value=66"},
		{"status", &msgs.StatusReply{Status: &msgs.StatusEvent{Word: 0xa160}}, false,
			"a1 60 FFIT+ FFOV- WKUP+ LBD- FFEM- RSSI- DQD- CRL+ ATGL- ASAME+ Offset:-32"},
		{"json", &msgs.PacketEvent{Label: 1, Value: 2, Result: 1}, true, `{"label":1,"value":2,"result":1}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := FormatMessage(tc.msg, tc.asJSON)
			require.NoError(t, err)
			require.Equal(t, tc.out, out)
		})
	}
}

func TestParseRef(t *testing.T) {
	ref, err := ParseRef("alpharx/abc")
	require.NoError(t, err)
	require.Equal(t, mqtt.DeviceRef{Type: "alpharx", ID: "abc"}, ref)
	for _, str := range []string{"alpharx", "alpharx/", "a/b/c", "/abc"} {
		_, err := ParseRef(str)
		require.Error(t, err, str)
	}
}

func TestLocalTarget(t *testing.T) {
	conf := env.NewConfig()
	conf.Backend = env.BackendSim
	conf.Table = ""
	conf.SimInterval = time.Hour
	e, err := conf.NewEnv()
	require.NoError(t, err)
	target := NewLocalTarget(e)
	defer target.Close()
	require.Equal(t, "local:sim", target.Name())

	reply, err := target.HandleCommand(context.Background(), &msgs.InitDefaults{})
	require.NoError(t, err)
	require.Equal(t, &msgs.CommandOK{}, reply)

	pkt, err := target.NextPacket(context.Background(), 0)
	require.NoError(t, err)
	require.Nil(t, pkt)

	e.Sim.Transmit(7, 200)
	pkt, err = target.NextPacket(context.Background(), time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, pkt)
	require.Equal(t, uint32(7), pkt.Label)
	require.Equal(t, uint32(200), pkt.Value)
	require.Equal(t, uint32(1), pkt.Result)
}

func TestLocalTargetSimBeacon(t *testing.T) {
	conf := env.NewConfig()
	conf.Backend = env.BackendSim
	conf.Table = ""
	conf.SimInterval = 5 * time.Millisecond
	e, err := conf.NewEnv()
	require.NoError(t, err)
	target := NewLocalTarget(e)

	var pkt *msgs.PacketEvent
	for i := 0; i < 50 && pkt == nil; i++ {
		pkt, err = target.NextPacket(context.Background(), 20*time.Millisecond)
		require.NoError(t, err)
	}
	require.NotNil(t, pkt)
	require.Equal(t, uint32(1), pkt.Label)
	require.Equal(t, uint32(alpharx.Valid), pkt.Result)

	require.NoError(t, target.Close())
	// the beacon is stopped with the target.
	pending := e.Sim.Pending()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, pending, e.Sim.Pending())
}
