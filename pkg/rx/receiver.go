package rx

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/alpharx/pkg/alpharx"
	"github.com/robotalks/alpharx/pkg/msgs"
)

// DefaultPollTimeout is the receive timeout of a single poll.
const DefaultPollTimeout = 500 * time.Millisecond

// Stats counts poll outcomes.
type Stats struct {
	Polls    uint64 `json:"polls"`
	Valid    uint64 `json:"valid"`
	Corrupt  uint64 `json:"corrupt"`
	Timeouts uint64 `json:"timeouts"`
}

// Receiver polls a Device and publishes what it receives.
type Receiver struct {
	Device    *Device
	Publisher Publisher

	// PollTimeout bounds a single receive. Cancellation is only noticed
	// between polls, so it also bounds the stop latency.
	PollTimeout time.Duration
	// StatusEvery publishes the status word periodically, zero disables.
	StatusEvery time.Duration
	// PublishCorrupt publishes packets failing the checksum as well.
	PublishCorrupt bool

	stats Stats
}

// Stats returns a snapshot of the counters.
func (r *Receiver) Stats() Stats {
	return Stats{
		Polls:    atomic.LoadUint64(&r.stats.Polls),
		Valid:    atomic.LoadUint64(&r.stats.Valid),
		Corrupt:  atomic.LoadUint64(&r.stats.Corrupt),
		Timeouts: atomic.LoadUint64(&r.stats.Timeouts),
	}
}

// Run implements framework.Runnable.
func (r *Receiver) Run(ctx context.Context) error {
	timeout := r.PollTimeout
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	var lastStatus time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := r.Poll(ctx, timeout); err != nil {
			return err
		}
		if r.StatusEvery > 0 && time.Since(lastStatus) >= r.StatusEvery {
			lastStatus = time.Now()
			if err := r.PublishStatus(ctx); err != nil {
				return err
			}
		}
	}
}

// Poll runs one receive and publishes the outcome. Only device failures
// are returned, publishing failures are logged.
func (r *Receiver) Poll(ctx context.Context, timeout time.Duration) error {
	res, pkt, err := r.Device.Receive(timeout)
	if err != nil {
		return err
	}
	atomic.AddUint64(&r.stats.Polls, 1)
	switch res {
	case alpharx.NoData:
		atomic.AddUint64(&r.stats.Timeouts, 1)
		return nil
	case alpharx.Valid:
		atomic.AddUint64(&r.stats.Valid, 1)
	case alpharx.ChecksumMismatch:
		atomic.AddUint64(&r.stats.Corrupt, 1)
		if !r.PublishCorrupt {
			glog.V(2).Infof("drop corrupt packet %s", pkt)
			return nil
		}
	}
	r.publish(ctx, &msgs.PacketEvent{
		Label:     uint32(pkt.Label()),
		Value:     uint32(pkt.Value()),
		Result:    uint32(res),
		Timestamp: time.Now().UnixNano(),
	})
	return nil
}

// PublishStatus reads and publishes the status word.
func (r *Receiver) PublishStatus(ctx context.Context) error {
	s, err := r.Device.ReadStatus()
	if err != nil {
		return err
	}
	r.publish(ctx, &msgs.StatusEvent{Word: uint32(s), Timestamp: time.Now().UnixNano()})
	return nil
}

func (r *Receiver) publish(ctx context.Context, msg msgs.Message) {
	if r.Publisher == nil {
		return
	}
	if err := r.Publisher.SendEvent(ctx, msg); err != nil {
		glog.Warningf("publish %s failed: %v", msg, err)
	}
}
