package host

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/robotalks/alpharx/pkg/alpharx"
	fx "github.com/robotalks/alpharx/pkg/framework"
)

// PeriphPins drives the lines through periph.io.
type PeriphPins struct {
	pins [alpharx.NumLines]gpio.PinIO
	err  error
}

// OpenPeriph initializes periph.io and binds the named pins. Lines are put
// into the idle state: select and frame advance high, clock low, SDO high,
// SDI and ready as pulled-up inputs.
func OpenPeriph(names PinNames) (*PeriphPins, error) {
	if err := names.Validate(); err != nil {
		return nil, err
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init error: %v", err)
	}
	p := &PeriphPins{}
	for l, name := range names.ByLine() {
		if name == "" {
			continue
		}
		pin := gpioreg.ByName(name)
		if pin == nil {
			return nil, fmt.Errorf("unknown pin %q for %s", name, alpharx.Line(l))
		}
		p.pins[l] = pin
	}
	if err := p.setup(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// NewPeriphPins wraps already opened pins indexed by alpharx.Line. A nil
// entry leaves the line unbound.
func NewPeriphPins(pins [alpharx.NumLines]gpio.PinIO) (*PeriphPins, error) {
	p := &PeriphPins{pins: pins}
	if err := p.setup(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *PeriphPins) setup() error {
	for _, l := range []alpharx.Line{alpharx.LineDataIn, alpharx.LineReady} {
		if pin := p.pins[l]; pin != nil {
			if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
				return fmt.Errorf("configure %s error: %v", l, err)
			}
		}
	}
	idle := []struct {
		line  alpharx.Line
		level gpio.Level
	}{
		{alpharx.LineSelect, gpio.High},
		{alpharx.LineFrameAdvance, gpio.High},
		{alpharx.LineClock, gpio.Low},
		{alpharx.LineDataOut, gpio.High},
	}
	for _, s := range idle {
		if pin := p.pins[s.line]; pin != nil {
			if err := pin.Out(s.level); err != nil {
				return fmt.Errorf("configure %s error: %v", s.line, err)
			}
		}
	}
	return nil
}

// Set implements alpharx.Pins.
func (p *PeriphPins) Set(l alpharx.Line, lvl gpio.Level) {
	pin := p.pins[l]
	if pin == nil || p.err != nil {
		return
	}
	if err := pin.Out(lvl); err != nil {
		p.err = fmt.Errorf("set %s(%s) error: %v", l, pin.Name(), err)
	}
}

// Get implements alpharx.Pins. Unbound lines read high, their idle level.
func (p *PeriphPins) Get(l alpharx.Line) gpio.Level {
	pin := p.pins[l]
	if pin == nil || p.err != nil {
		return gpio.High
	}
	return pin.Read()
}

// Err returns the first I/O error.
func (p *PeriphPins) Err() error {
	return p.err
}

// Close releases the pins back to floating inputs.
func (p *PeriphPins) Close() error {
	var errs fx.AggregatedError
	for l, pin := range p.pins {
		if pin == nil {
			continue
		}
		if err := pin.In(gpio.Float, gpio.NoEdge); err != nil {
			errs.Add(fmt.Errorf("release %s(%s) error: %w", alpharx.Line(l), pin.Name(), err))
		}
	}
	return errs.Aggregate()
}
