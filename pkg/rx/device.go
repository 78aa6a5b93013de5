package rx

import (
	"io"
	"sync"
	"time"

	"github.com/robotalks/alpharx/pkg/alpharx"
)

// ErrReporter is implemented by line backends which can fail.
type ErrReporter interface {
	Err() error
}

// Device serializes access to one receiver and reports backend failures.
// The driver itself is open-loop, so a broken line only shows up through
// the backend's sticky error, which is checked after every operation.
type Device struct {
	pins   alpharx.Pins
	driver *alpharx.Driver
	table  alpharx.Table
	lock   sync.Mutex
}

// NewDevice creates a Device. A nil table selects DefaultTable.
func NewDevice(pins alpharx.Pins, clock alpharx.Clock, table alpharx.Table) *Device {
	if table == nil {
		table = DefaultTable
	}
	return &Device{
		pins:   pins,
		driver: alpharx.New(pins, clock),
		table:  table,
	}
}

// Table returns the configuration table used by Init.
func (d *Device) Table() alpharx.Table {
	return d.table
}

// Init replays the configuration table.
func (d *Device) Init() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.driver.Init(d.table)
	return d.err()
}

// SendCommand writes a single command frame.
func (d *Device) SendCommand(cmd1, cmd2 byte) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.driver.SendCommand(cmd1, cmd2)
	return d.err()
}

// Receive waits up to timeout for a packet.
func (d *Device) Receive(timeout time.Duration) (alpharx.Result, alpharx.Packet, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	res, pkt := d.driver.ReceivePacket(timeout)
	if err := d.err(); err != nil {
		return alpharx.NoData, alpharx.Packet{}, err
	}
	return res, pkt, nil
}

// ReadStatus reads the status word.
func (d *Device) ReadStatus() (alpharx.StatusWord, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	s := d.driver.ReadStatus()
	return s, d.err()
}

// Close releases the lines if the backend holds any.
func (d *Device) Close() error {
	if closer, ok := d.pins.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (d *Device) err() error {
	if r, ok := d.pins.(ErrReporter); ok {
		return r.Err()
	}
	return nil
}
