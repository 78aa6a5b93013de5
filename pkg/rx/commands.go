package rx

import (
	"context"
	"fmt"
	"time"

	"github.com/robotalks/alpharx/pkg/msgs"
)

// Commands executes remote commands on a Device.
type Commands struct {
	Device *Device
}

// HandleCommand implements msgs.CommandHandler.
func (c *Commands) HandleCommand(ctx context.Context, msg msgs.Message) (msgs.Message, error) {
	switch m := msg.(type) {
	case *msgs.SendCommand:
		if m.Cmd1 > 0xff || m.Cmd2 > 0xff {
			return nil, fmt.Errorf("command out of range: %x %x", m.Cmd1, m.Cmd2)
		}
		if err := c.Device.SendCommand(byte(m.Cmd1), byte(m.Cmd2)); err != nil {
			return nil, err
		}
		return &msgs.CommandOK{}, nil
	case *msgs.InitDefaults:
		if err := c.Device.Init(); err != nil {
			return nil, err
		}
		return &msgs.CommandOK{}, nil
	case *msgs.StatusQuery:
		s, err := c.Device.ReadStatus()
		if err != nil {
			return nil, err
		}
		return &msgs.StatusReply{Status: &msgs.StatusEvent{Word: uint32(s), Timestamp: time.Now().UnixNano()}}, nil
	}
	return nil, msgs.ErrUnsupportedCommand
}
