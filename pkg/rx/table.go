package rx

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/alpharx/pkg/alpharx"
)

// DefaultTable is the power-up configuration of an AlphaRX module:
// 434MHz band, 200kHz bandwidth, 9.6kbps, FIFO fill on the sync word.
// The final three writes restart the FIFO and must be spaced apart.
var DefaultTable = alpharx.Table{
	{Cmd1: 0x89, Cmd2: 0x3B},
	{Cmd1: 0xA6, Cmd2: 0x20},
	{Cmd1: 0xC0, Cmd2: 0xC3},
	{Cmd1: 0xCC, Cmd2: 0x0E},
	{Cmd1: 0xC6, Cmd2: 0xF7},
	{Cmd1: 0xC4, Cmd2: 0xEC},
	{Cmd1: 0xC8, Cmd2: 0x23},
	{Cmd1: 0x00, Cmd2: 0x00},
	{Cmd1: 0xCE, Cmd2: 0xF8, PauseMicros: 2},
	{Cmd1: 0xCE, Cmd2: 0xFB, PauseMicros: 2},
	{Cmd1: 0xC0, Cmd2: 0xC3, PauseMicros: 2},
}

// TableFile is the layout of a configuration table file.
type TableFile struct {
	Steps alpharx.Table `yaml:"steps"`
}

// ParseTable parses a YAML configuration table.
func ParseTable(data []byte) (alpharx.Table, error) {
	var f TableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("no steps")
	}
	for n, step := range f.Steps {
		if step.PauseMicros < 0 {
			return nil, fmt.Errorf("step %d: negative pause %d", n, step.PauseMicros)
		}
	}
	return f.Steps, nil
}

// LoadTable reads a YAML configuration table from a file. An empty path
// returns DefaultTable.
func LoadTable(path string) (alpharx.Table, error) {
	if path == "" {
		return DefaultTable, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	table, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return table, nil
}
