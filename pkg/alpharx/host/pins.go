package host

import (
	"fmt"
	"os"
	"strings"

	"github.com/robotalks/alpharx/pkg/alpharx"
)

// PinNames names the GPIO bound to each line. FrameAdvance may be empty
// when nFFS is not wired.
type PinNames struct {
	Select       string
	DataOut      string
	DataIn       string
	Clock        string
	Ready        string
	FrameAdvance string
}

// DefaultPinNames is the wiring used on a Raspberry Pi header.
var DefaultPinNames = PinNames{
	Select:       "GPIO8",
	DataOut:      "GPIO10",
	DataIn:       "GPIO9",
	Clock:        "GPIO11",
	Ready:        "GPIO25",
	FrameAdvance: "GPIO24",
}

// ByLine returns the names indexed by alpharx.Line.
func (n PinNames) ByLine() [alpharx.NumLines]string {
	return [alpharx.NumLines]string{
		alpharx.LineSelect:       n.Select,
		alpharx.LineDataOut:      n.DataOut,
		alpharx.LineDataIn:       n.DataIn,
		alpharx.LineClock:        n.Clock,
		alpharx.LineReady:        n.Ready,
		alpharx.LineFrameAdvance: n.FrameAdvance,
	}
}

// ParsePinNames parses "sel,sdo,sdi,sck,irq[,ffs]".
func ParsePinNames(s string) (PinNames, error) {
	items := strings.Split(s, ",")
	if len(items) != 5 && len(items) != 6 {
		return PinNames{}, fmt.Errorf("expect 5 or 6 pins, got %d", len(items))
	}
	for n := range items {
		items[n] = strings.TrimSpace(items[n])
	}
	names := PinNames{
		Select:  items[0],
		DataOut: items[1],
		DataIn:  items[2],
		Clock:   items[3],
		Ready:   items[4],
	}
	if len(items) == 6 {
		names.FrameAdvance = items[5]
	}
	return names, names.Validate()
}

// Validate checks all mandatory lines are named.
func (n PinNames) Validate() error {
	for l, name := range n.ByLine() {
		if name == "" && alpharx.Line(l) != alpharx.LineFrameAdvance {
			return fmt.Errorf("pin for %s not specified", alpharx.Line(l))
		}
	}
	return nil
}

func (n PinNames) String() string {
	names := n.ByLine()
	return strings.TrimSuffix(strings.Join(names[:], ","), ",")
}

func init() {
	if val := os.Getenv("ALPHARX_PINS"); val != "" {
		if names, err := ParsePinNames(val); err == nil {
			DefaultPinNames = names
		}
	}
}
