//go:build !linux
// +build !linux

package host

import (
	"errors"

	"periph.io/x/conn/v3/gpio"

	"github.com/robotalks/alpharx/pkg/alpharx"
)

// ErrNoGPIOD is returned where the GPIO character device is unavailable.
var ErrNoGPIOD = errors.New("gpiod backend requires linux")

// GPIODPins is only available on linux.
type GPIODPins struct{}

// OpenGPIOD always fails outside linux.
func OpenGPIOD(chipName string, names PinNames) (*GPIODPins, error) {
	return nil, ErrNoGPIOD
}

// Set implements alpharx.Pins.
func (p *GPIODPins) Set(alpharx.Line, gpio.Level) {}

// Get implements alpharx.Pins.
func (p *GPIODPins) Get(alpharx.Line) gpio.Level { return gpio.High }

// Err implements the error report of the linux backend.
func (p *GPIODPins) Err() error { return ErrNoGPIOD }

// Close implements io.Closer.
func (p *GPIODPins) Close() error { return nil }
