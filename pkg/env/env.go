package env

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/alpharx/pkg/alpharx"
	"github.com/robotalks/alpharx/pkg/alpharx/host"
	"github.com/robotalks/alpharx/pkg/alpharx/sim"
	fx "github.com/robotalks/alpharx/pkg/framework"
	"github.com/robotalks/alpharx/pkg/mqtt"
	"github.com/robotalks/alpharx/pkg/rx"
	"github.com/robotalks/alpharx/pkg/websocket"
)

// Env is an opened receiver with its configuration.
type Env struct {
	Config *Config
	Device *rx.Device
	// Sim is the simulated chip when the sim backend is used.
	Sim *sim.Chip
}

// NewEnv opens the device selected by the config.
func (c *Config) NewEnv() (*Env, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	table, err := rx.LoadTable(c.Table)
	if err != nil {
		return nil, err
	}
	env := &Env{Config: c}
	var pins alpharx.Pins
	switch c.Backend {
	case BackendSim:
		env.Sim = sim.NewChip()
		pins = env.Sim
	case BackendPeriph:
		if pins, err = host.OpenPeriph(c.Pins); err != nil {
			return nil, err
		}
	case BackendGPIOD:
		if pins, err = host.OpenGPIOD(c.GPIOChip, c.Pins); err != nil {
			return nil, err
		}
	}
	glog.V(3).Infof("opened %s backend, pins %s", c.Backend, c.Pins)
	env.Device = rx.NewDevice(pins, host.SpinClock{}, table)
	return env, nil
}

// Close releases the device.
func (e *Env) Close() error {
	return e.Device.Close()
}

// Meta describes the device for the registry.
func (e *Env) Meta() mqtt.DeviceMeta {
	meta := mqtt.DeviceMeta{
		Description: "AlphaRX FM receiver",
		Backend:     e.Config.Backend,
	}
	if e.Sim == nil {
		meta.Pins = e.Config.Pins.String()
	}
	return meta
}

// Receiver creates the poll loop publishing to pub.
func (e *Env) Receiver(pub rx.Publisher) *rx.Receiver {
	return &rx.Receiver{
		Device:         e.Device,
		Publisher:      pub,
		PollTimeout:    e.Config.PollTimeout,
		StatusEvery:    e.Config.StatusEvery,
		PublishCorrupt: e.Config.PublishCorrupt,
	}
}

// Service assembles everything a receiver daemon runs: the poll loop,
// the enabled publishers and the sim transmitter.
func (e *Env) Service() ([]fx.Runnable, error) {
	var runnables []fx.Runnable
	pubs := &rx.PublisherMux{}
	if url := e.Config.MQTTBrokerURL; url != "" {
		bridge, err := mqtt.NewBridge(url, e.Config.Ref, e.Meta(), &rx.Commands{Device: e.Device})
		if err != nil {
			return nil, fmt.Errorf("create MQTT bridge error: %v", err)
		}
		pubs.Add(bridge)
		runnables = append(runnables, fx.NamedRun("mqtt", bridge))
	}
	if addr := e.Config.Listen; addr != "" {
		srv := websocket.NewServer(addr)
		pubs.Add(srv)
		runnables = append(runnables, fx.NamedRun("websocket", srv))
	}
	if len(pubs.Publishers) == 0 {
		glog.Warning("no publisher enabled, packets are only logged")
	}
	runnables = append(runnables, fx.NamedRun("receiver", e.Receiver(pubs)))
	if beacon := e.Beacon(); beacon != nil {
		runnables = append(runnables, fx.NamedRun("beacon", beacon))
	}
	return runnables, nil
}

// Beacon creates the simulated transmitter feeding the sim chip, nil for
// hardware backends.
func (e *Env) Beacon() *sim.Beacon {
	if e.Sim == nil {
		return nil
	}
	return &sim.Beacon{
		Chip:         e.Sim,
		Label:        1,
		Interval:     e.Config.SimInterval,
		CorruptEvery: 10,
	}
}
