// Package sh provides an interactive shell on a receiver, either opened
// locally or reached over MQTT.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/alpharx/pkg/alpharx"
	"github.com/robotalks/alpharx/pkg/env"
	"github.com/robotalks/alpharx/pkg/mqtt"
	"github.com/robotalks/alpharx/pkg/msgs"
)

// CommandTimeout bounds waiting for a command reply.
const CommandTimeout = time.Second

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool

	Shell  *ishell.Shell
	Config *env.Config
	Target Target
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	remote     string

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&OpenCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.StringVar(&remote, "remote", remote, "TYPE/ID of a receiver reached over MQTT instead of the local device.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a target.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Target == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// FormatMessage renders a message for display.
func FormatMessage(msg msgs.Message, asJSON bool) (string, error) {
	if asJSON {
		out, err := json.Marshal(msg)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	switch m := msg.(type) {
	case *msgs.CommandOK:
		return "OK", nil
	case *msgs.PacketEvent:
		return fmt.Sprintf("%s label=%d value=%d", alpharx.Result(m.Result), m.Label, m.Value), nil
	case *msgs.StatusEvent:
		return formatStatus(m), nil
	case *msgs.StatusReply:
		if m.Status != nil {
			return formatStatus(m.Status), nil
		}
	}
	return fmt.Sprintf("%s %s", reflect.Indirect(reflect.ValueOf(msg)).Type().Name(), msg.String()), nil
}

func formatStatus(m *msgs.StatusEvent) string {
	s := alpharx.StatusWord(m.Word)
	b := s.Bytes()
	return fmt.Sprintf("%02x %02x %s", b[0], b[1], s)
}

// Print prints a message honoring OutputJSON.
func Print(c *ishell.Context, msg msgs.Message) {
	out, err := FormatMessage(msg, ShellFrom(c).OutputJSON)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(out)
}

// DoCommand runs a command and prints the result.
func DoCommand(c *ishell.Context, msg msgs.Message) error {
	s := ShellFrom(c)
	if s.Target == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
	defer cancel()
	reply, err := s.Target.HandleCommand(ctx, msg)
	if err != nil {
		c.Err(err)
		return err
	}
	Print(c, reply)
	return nil
}

// SetTarget switches to a new target, closing the current one.
func (s *Shell) SetTarget(t Target) {
	s.Disconnect()
	s.Target = t
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", t.Name()))
}

// OpenLocal opens the local device per the config.
func (s *Shell) OpenLocal() error {
	s.Disconnect()
	e, err := s.Config.NewEnv()
	if err != nil {
		return err
	}
	s.SetTarget(NewLocalTarget(e))
	return nil
}

// Connect connects a remote receiver.
func (s *Shell) Connect(ref mqtt.DeviceRef) error {
	if s.Config.MQTTBrokerURL == "" {
		return fmt.Errorf("MQTT broker URL required")
	}
	s.Disconnect()
	t, err := DialRemote(s.Config.MQTTBrokerURL, ref)
	if err != nil {
		return err
	}
	s.SetTarget(t)
	return nil
}

// Disconnect closes the current target.
func (s *Shell) Disconnect() {
	if s.Target != nil {
		s.Target.Close()
		s.Target = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// ParseRef parses TYPE/ID.
func ParseRef(str string) (mqtt.DeviceRef, error) {
	items := strings.SplitN(str, "/", 2)
	if len(items) != 2 {
		return mqtt.DeviceRef{}, fmt.Errorf("invalid device %q, expect TYPE/ID", str)
	}
	ref := mqtt.DeviceRef{Type: items[0], ID: items[1]}
	if !ref.IsValid() {
		return ref, fmt.Errorf("invalid device %q", str)
	}
	return ref, nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	var err error
	if remote != "" {
		var ref mqtt.DeviceRef
		if ref, err = ParseRef(remote); err == nil {
			err = s.Connect(ref)
		}
	} else {
		err = s.OpenLocal()
	}
	if err != nil {
		log.Fatalln(err)
	}
	defer s.Disconnect()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// DiscoverCmd lists receivers registered on the broker.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			refs, err := mqtt.Discover(context.Background(), s.Config.MQTTBrokerURL, mqtt.DefaultDiscoverTimeout)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if len(refs) == 0 {
					refs = []mqtt.DeviceRef{}
				}
				out, err := json.Marshal(refs)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(refs) == 0 {
				c.Println("No receivers found")
				return
			}
			for _, ref := range refs {
				c.Println(ref.Name())
			}
		},
	}

	// ConnectCmd connects a remote receiver.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "TYPE/ID",
		Func: func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("TYPE/ID required"))
				return
			}
			ref, err := ParseRef(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			if err := ShellFrom(c).Connect(ref); err != nil {
				c.Err(err)
			}
		},
	}

	// OpenCmd opens the local device.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).OpenLocal(); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd closes the current target.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).Run(flag.Args()...)
}
