// Package rx adds receiver commands to the shell.
package rx

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/alpharx/pkg/cli/sh"
	"github.com/robotalks/alpharx/pkg/msgs"
)

// DefaultRecvTimeout is used by recv without an argument.
const DefaultRecvTimeout = 500 * time.Millisecond

// ParseByte parses a command byte, hex with or without 0x prefix.
func ParseByte(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	val, err := strconv.ParseUint(s, 16, 8)
	return uint32(val), err
}

// ParseTimeout parses milliseconds or a duration.
func ParseTimeout(s string) (time.Duration, error) {
	if ms, err := strconv.ParseUint(s, 10, 32); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err == nil && d < 0 {
		err = fmt.Errorf("negative timeout")
	}
	return d, err
}

var (
	// InitCmd replays the configuration table.
	InitCmd = ishell.Cmd{
		Name:    "init",
		Aliases: []string{"i"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.InitDefaults{})
		}),
	}

	// SendCmd writes one command frame.
	SendCmd = ishell.Cmd{
		Name:    "cmd",
		Aliases: []string{"w"},
		Help:    "CMD1 CMD2 (hex)",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("CMD1 CMD2 required"))
				return
			}
			var msg msgs.SendCommand
			var err error
			if msg.Cmd1, err = ParseByte(c.Args[0]); err != nil {
				c.Err(fmt.Errorf("Invalid CMD1: %v", err))
				return
			}
			if msg.Cmd2, err = ParseByte(c.Args[1]); err != nil {
				c.Err(fmt.Errorf("Invalid CMD2: %v", err))
				return
			}
			sh.DoCommand(c, &msg)
		}),
	}

	// StatusCmd reads the status word.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"s"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.StatusQuery{})
		}),
	}

	// RecvCmd waits for packets.
	RecvCmd = ishell.Cmd{
		Name:    "recv",
		Aliases: []string{"r"},
		Help:    "[TIMEOUT(ms)] [COUNT]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			timeout, count := DefaultRecvTimeout, 1
			if len(c.Args) > 0 {
				val, err := ParseTimeout(c.Args[0])
				if err != nil {
					c.Err(fmt.Errorf("Invalid TIMEOUT: %v", err))
					return
				}
				timeout = val
			}
			if len(c.Args) > 1 {
				val, err := strconv.Atoi(c.Args[1])
				if err != nil || val <= 0 {
					c.Err(fmt.Errorf("Invalid COUNT: %s", c.Args[1]))
					return
				}
				count = val
			}
			target := sh.ShellFrom(c).Target
			for i := 0; i < count; i++ {
				pkt, err := target.NextPacket(context.Background(), timeout)
				if err != nil {
					c.Err(err)
					return
				}
				if pkt == nil {
					c.Println("no data")
					continue
				}
				sh.Print(c, pkt)
			}
		}),
	}
)

func init() {
	sh.AddCmds(
		&InitCmd,
		&SendCmd,
		&StatusCmd,
		&RecvCmd,
	)
}
