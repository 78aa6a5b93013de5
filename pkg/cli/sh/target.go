package sh

import (
	"context"
	"io"
	"time"

	"github.com/robotalks/alpharx/pkg/alpharx"
	"github.com/robotalks/alpharx/pkg/env"
	"github.com/robotalks/alpharx/pkg/mqtt"
	"github.com/robotalks/alpharx/pkg/msgs"
	"github.com/robotalks/alpharx/pkg/rx"
)

// Target is the receiver the shell operates on.
type Target interface {
	msgs.CommandHandler
	io.Closer
	// Name is used in the prompt.
	Name() string
	// NextPacket waits for a packet, nil if none arrived within timeout.
	NextPacket(ctx context.Context, timeout time.Duration) (*msgs.PacketEvent, error)
}

// LocalTarget drives a device opened in this process. With the sim
// backend a beacon transmits to the chip until the target is closed.
type LocalTarget struct {
	Env *env.Env

	cmds   rx.Commands
	cancel func()
	done   chan struct{}
}

// NewLocalTarget creates a LocalTarget.
func NewLocalTarget(e *env.Env) *LocalTarget {
	t := &LocalTarget{Env: e, cmds: rx.Commands{Device: e.Device}}
	if beacon := e.Beacon(); beacon != nil {
		var ctx context.Context
		ctx, t.cancel = context.WithCancel(context.Background())
		t.done = make(chan struct{})
		go func() {
			defer close(t.done)
			beacon.Run(ctx)
		}()
	}
	return t
}

// Name implements Target.
func (t *LocalTarget) Name() string {
	return "local:" + t.Env.Config.Backend
}

// HandleCommand implements Target.
func (t *LocalTarget) HandleCommand(ctx context.Context, msg msgs.Message) (msgs.Message, error) {
	return t.cmds.HandleCommand(ctx, msg)
}

// NextPacket implements Target. Packets failing the checksum are returned
// as well, with their result.
func (t *LocalTarget) NextPacket(ctx context.Context, timeout time.Duration) (*msgs.PacketEvent, error) {
	res, pkt, err := t.Env.Device.Receive(timeout)
	if err != nil || res == alpharx.NoData {
		return nil, err
	}
	return &msgs.PacketEvent{
		Label:     uint32(pkt.Label()),
		Value:     uint32(pkt.Value()),
		Result:    uint32(res),
		Timestamp: time.Now().UnixNano(),
	}, nil
}

// Close implements Target.
func (t *LocalTarget) Close() error {
	if t.cancel != nil {
		t.cancel()
		<-t.done
		t.cancel = nil
	}
	return t.Env.Close()
}

// RemoteTarget talks to a receiver service over MQTT.
type RemoteTarget struct {
	Client *mqtt.Client

	packets chan *msgs.PacketEvent
}

// DialRemote connects to a receiver service.
func DialRemote(brokerURL string, ref mqtt.DeviceRef) (*RemoteTarget, error) {
	t := &RemoteTarget{packets: make(chan *msgs.PacketEvent, 16)}
	client, err := mqtt.Dial(brokerURL, ref, t.onEvent)
	if err != nil {
		return nil, err
	}
	t.Client = client
	return t, nil
}

func (t *RemoteTarget) onEvent(msg msgs.Message) {
	if pkt, ok := msg.(*msgs.PacketEvent); ok {
		select {
		case t.packets <- pkt:
		default:
		}
	}
}

// Name implements Target.
func (t *RemoteTarget) Name() string {
	return t.Client.Ref.Name()
}

// HandleCommand implements Target.
func (t *RemoteTarget) HandleCommand(ctx context.Context, msg msgs.Message) (msgs.Message, error) {
	return t.Client.DoCommand(ctx, msg)
}

// NextPacket implements Target.
func (t *RemoteTarget) NextPacket(ctx context.Context, timeout time.Duration) (*msgs.PacketEvent, error) {
	select {
	case pkt := <-t.packets:
		return pkt, nil
	case <-time.After(timeout):
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close implements Target.
func (t *RemoteTarget) Close() error {
	return t.Client.Close()
}
