// Package env sets up a receiver from command line flags and environment
// variables.
package env

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robotalks/alpharx/pkg/alpharx/host"
	"github.com/robotalks/alpharx/pkg/mqtt"
	"github.com/robotalks/alpharx/pkg/rx"
)

// Backends
const (
	BackendSim    = "sim"
	BackendPeriph = "periph"
	BackendGPIOD  = "gpiod"
)

// Config provides common options to set up a receiver.
type Config struct {
	// Backend selects how the lines are driven.
	Backend  string
	GPIOChip string
	Pins     host.PinNames
	// Table is the path of a YAML configuration table, empty for the
	// built-in one.
	Table string

	Ref mqtt.DeviceRef
	// MQTTBrokerURL specifies the MQTT broker to use, empty disables MQTT.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string
	// Listen is the websocket listen address, empty disables it.
	Listen string

	PollTimeout    time.Duration
	StatusEvery    time.Duration
	PublishCorrupt bool

	// SimInterval is the beacon interval of the sim backend.
	SimInterval time.Duration
}

var defaultConfig = Config{
	Backend:       BackendSim,
	GPIOChip:      "gpiochip0",
	Ref:           mqtt.DeviceRef{Type: "alpharx"},
	MQTTBrokerURL: "mqtt://localhost:1883/alpharx/",
	PollTimeout:   rx.DefaultPollTimeout,
	SimInterval:   time.Second,
}

func init() {
	if val := os.Getenv("ALPHARX_BACKEND"); val != "" {
		defaultConfig.Backend = val
	}
	if val := os.Getenv("ALPHARX_GPIOCHIP"); val != "" {
		defaultConfig.GPIOChip = val
	}
	if val := os.Getenv("ALPHARX_TABLE"); val != "" {
		defaultConfig.Table = val
	}
	if val := os.Getenv("ALPHARX_TYPE"); val != "" {
		defaultConfig.Ref.Type = val
	}
	if val, ok := os.LookupEnv("ALPHARX_MQTT_URL"); ok {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("ALPHARX_LISTEN"); val != "" {
		defaultConfig.Listen = val
	}
	defaultConfig.Pins = host.DefaultPinNames
	if val := os.Getenv("ALPHARX_ID"); val != "" {
		defaultConfig.Ref.ID = val
	} else {
		defaultConfig.Ref.ID = MachineID()
	}
}

// SetupFlags sets up the flags selecting and wiring the device.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Backend, "backend", defaultConfig.Backend, "Line backend: sim, periph or gpiod")
	flag.StringVar(&defaultConfig.GPIOChip, "gpiochip", defaultConfig.GPIOChip, "GPIO chip for gpiod backend")
	flag.StringVar(&defaultConfig.Pins.Select, "pin-sel", defaultConfig.Pins.Select, "nSEL pin")
	flag.StringVar(&defaultConfig.Pins.DataOut, "pin-sdo", defaultConfig.Pins.DataOut, "SDO pin (host to chip)")
	flag.StringVar(&defaultConfig.Pins.DataIn, "pin-sdi", defaultConfig.Pins.DataIn, "SDI pin (chip to host)")
	flag.StringVar(&defaultConfig.Pins.Clock, "pin-sck", defaultConfig.Pins.Clock, "SCK pin")
	flag.StringVar(&defaultConfig.Pins.Ready, "pin-irq", defaultConfig.Pins.Ready, "nIRQ pin")
	flag.StringVar(&defaultConfig.Pins.FrameAdvance, "pin-ffs", defaultConfig.Pins.FrameAdvance, "nFFS pin, empty if not wired")
	flag.StringVar(&defaultConfig.Table, "table", defaultConfig.Table, "YAML configuration table")
	flag.DurationVar(&defaultConfig.SimInterval, "sim-interval", defaultConfig.SimInterval, "Packet interval of sim backend")
}

// SetupServiceFlags sets up the flags of the receiver service.
func SetupServiceFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "type", defaultConfig.Ref.Type, "Device type")
	flag.StringVar(&defaultConfig.Ref.ID, "id", defaultConfig.Ref.ID, "Device ID")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable")
	flag.StringVar(&defaultConfig.Listen, "listen", defaultConfig.Listen, "Websocket listen address, empty to disable")
	flag.DurationVar(&defaultConfig.PollTimeout, "poll", defaultConfig.PollTimeout, "Receive timeout of a single poll")
	flag.DurationVar(&defaultConfig.StatusEvery, "status-every", defaultConfig.StatusEvery, "Publish status periodically, 0 to disable")
	flag.BoolVar(&defaultConfig.PublishCorrupt, "publish-corrupt", defaultConfig.PublishCorrupt, "Also publish packets failing the checksum")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSim:
	case BackendPeriph, BackendGPIOD:
		if err := c.Pins.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", rx.ErrUnknownBackend, c.Backend)
	}
	if c.PollTimeout < 0 || c.StatusEvery < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// SetupClientFlags sets up the flags of a client reaching receivers over
// MQTT.
func SetupClientFlags() {
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL")
}
