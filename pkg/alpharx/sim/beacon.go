package sim

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/alpharx/pkg/alpharx"
)

// Beacon is a simulated transmitter. It puts a packet on the air every
// Interval, cycling the value and keeping the label fixed.
type Beacon struct {
	Chip     *Chip
	Label    byte
	Interval time.Duration
	// CorruptEvery injects a frame with a broken checksum every N packets,
	// zero never does.
	CorruptEvery int
}

// Run implements framework.Runnable.
func (b *Beacon) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()
	var value byte
	var count int
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		count++
		if b.CorruptEvery > 0 && count%b.CorruptEvery == 0 {
			frame := alpharx.Encode(b.Label, value)
			b.Chip.Inject(frame[0]^0x10, frame[1])
			glog.V(3).Infof("beacon: corrupt %02x %02x", frame[0]^0x10, frame[1])
		} else {
			b.Chip.Transmit(b.Label, value)
			glog.V(3).Infof("beacon: %x/%d", b.Label&0x0f, value)
		}
		value++
	}
}
