package host

import (
	"fmt"
	"strconv"

	"github.com/warthog618/gpiod"
	"periph.io/x/conn/v3/gpio"

	"github.com/robotalks/alpharx/pkg/alpharx"
)

// GPIODPins drives the lines through the Linux GPIO character device.
type GPIODPins struct {
	chip  *gpiod.Chip
	lines [alpharx.NumLines]*gpiod.Line
	err   error
}

// OpenGPIOD requests the lines from a GPIO chip. Pin names are line
// offsets on that chip.
func OpenGPIOD(chipName string, names PinNames) (*GPIODPins, error) {
	if err := names.Validate(); err != nil {
		return nil, err
	}
	chip, err := gpiod.NewChip(chipName, gpiod.WithConsumer("alpharx"))
	if err != nil {
		return nil, fmt.Errorf("open %s error: %v", chipName, err)
	}
	p := &GPIODPins{chip: chip}
	for l, name := range names.ByLine() {
		if name == "" {
			continue
		}
		offset, err := strconv.Atoi(name)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("invalid line offset %q for %s", name, alpharx.Line(l))
		}
		var opts []gpiod.LineReqOption
		switch alpharx.Line(l) {
		case alpharx.LineDataIn, alpharx.LineReady:
			opts = append(opts, gpiod.AsInput, gpiod.WithPullUp)
		case alpharx.LineClock:
			opts = append(opts, gpiod.AsOutput(0))
		default:
			opts = append(opts, gpiod.AsOutput(1))
		}
		line, err := chip.RequestLine(offset, opts...)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("request line %d for %s error: %v", offset, alpharx.Line(l), err)
		}
		p.lines[l] = line
	}
	return p, nil
}

// Set implements alpharx.Pins.
func (p *GPIODPins) Set(l alpharx.Line, lvl gpio.Level) {
	line := p.lines[l]
	if line == nil || p.err != nil {
		return
	}
	var v int
	if lvl {
		v = 1
	}
	if err := line.SetValue(v); err != nil {
		p.err = fmt.Errorf("set %s error: %v", l, err)
	}
}

// Get implements alpharx.Pins. Unbound lines read high.
func (p *GPIODPins) Get(l alpharx.Line) gpio.Level {
	line := p.lines[l]
	if line == nil || p.err != nil {
		return gpio.High
	}
	v, err := line.Value()
	if err != nil {
		p.err = fmt.Errorf("get %s error: %v", l, err)
		return gpio.High
	}
	return v != 0
}

// Err returns the first I/O error.
func (p *GPIODPins) Err() error {
	return p.err
}

// Close releases all lines and the chip.
func (p *GPIODPins) Close() error {
	for n, line := range p.lines {
		if line != nil {
			line.Close()
			p.lines[n] = nil
		}
	}
	return p.chip.Close()
}
