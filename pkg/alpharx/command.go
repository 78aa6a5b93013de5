package alpharx

import (
	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
)

// Step is one register write of a configuration table.
type Step struct {
	Cmd1 byte `yaml:"cmd1" json:"cmd1"`
	Cmd2 byte `yaml:"cmd2" json:"cmd2"`
	// PauseMicros is waited before the command is sent.
	PauseMicros int `yaml:"pause_us,omitempty" json:"pause_us,omitempty"`
}

// Table is an ordered list of register writes.
type Table []Step

// SendCommand writes one two-byte command frame. No acknowledgement is
// read back. All lines are left idle on return.
func (d *Driver) SendCommand(cmd1, cmd2 byte) {
	d.pins.Set(LineSelect, gpio.Low)
	d.clock.DelayMicros(1)
	d.sendByte(cmd1)
	d.sendByte(cmd2)
	d.pins.Set(LineSelect, gpio.High)
	d.pins.Set(LineDataOut, gpio.Low)
	d.pins.Set(LineClock, gpio.Low)
	d.clock.DelayMicros(1)
}

// Init sends every step of the table in order, including its pauses.
// The chip latches some state transitions on these pauses, so steps
// must be neither reordered nor merged.
func (d *Driver) Init(table Table) {
	for n, step := range table {
		if step.PauseMicros > 0 {
			d.clock.DelayMicros(step.PauseMicros)
		}
		if glog.V(3) {
			glog.Infof("init[%d] %02x %02x", n, step.Cmd1, step.Cmd2)
		}
		d.SendCommand(step.Cmd1, step.Cmd2)
	}
}
