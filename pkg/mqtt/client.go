package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/alpharx/pkg/msgs"
)

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Discover lists the devices which published meta within timeout.
func Discover(ctx context.Context, brokerURL string, timeout time.Duration) ([]DeviceRef, error) {
	q, err := NewQueueFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	token := q.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	defer q.Close()

	resCh := make(chan DeviceRef, 16)
	sub := q.Sub("+/+/"+TopicMeta, func(topic string, payload []byte) {
		// an empty retained meta is a device gone.
		if ref, _, ok := ParseTopic(topic); ok && len(payload) > 0 {
			select {
			case resCh <- ref:
			case <-time.After(time.Second):
			}
		}
	})
	if err := sub.Wait(); err != nil {
		return nil, fmt.Errorf("subscribe meta error: %w", err)
	}

	if timeout <= 0 {
		timeout = DefaultDiscoverTimeout
	}
	expire := time.After(timeout)
	var refs []DeviceRef
	seen := make(map[DeviceRef]bool)
	for {
		select {
		case ref := <-resCh:
			if !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		case <-expire:
			return refs, nil
		case <-ctx.Done():
			return refs, ctx.Err()
		}
	}
}

// Client talks to a remote receiver.
type Client struct {
	Queue *Queue
	Ref   DeviceRef
	// OnEvent is called for every event the device publishes. It is set
	// by Dial and must not change afterwards.
	OnEvent func(msgs.Message)

	seq     uint32
	pending map[uint32]chan msgs.Message
	lock    sync.Mutex
}

// Dial connects to the device on the broker. onEvent receives the events
// the device publishes and may be nil. Dial returns once the reply topic
// is subscribed, so no reply to a later command is missed.
func Dial(brokerURL string, ref DeviceRef, onEvent func(msgs.Message)) (*Client, error) {
	q, err := NewQueueFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		Queue:   q,
		Ref:     ref,
		OnEvent: onEvent,
		pending: make(map[uint32]chan msgs.Message),
	}
	token := q.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	if err := q.Sub(ref.Topic(TopicMsg), c.handleMsg).Wait(); err != nil {
		q.Close()
		return nil, fmt.Errorf("subscribe %s error: %w", ref.Topic(TopicMsg), err)
	}
	return c, nil
}

// Close implements io.Closer.
func (c *Client) Close() error {
	return c.Queue.Close()
}

// DoCommand sends a command and waits for the reply. A CommandErr reply
// is returned as the error.
func (c *Client) DoCommand(ctx context.Context, msg msgs.Message) (msgs.Message, error) {
	replyCh := make(chan msgs.Message, 1)
	c.lock.Lock()
	c.seq++
	if c.seq == 0 {
		c.seq++
	}
	seq := c.seq
	c.pending[seq] = replyCh
	c.lock.Unlock()
	defer func() {
		c.lock.Lock()
		delete(c.pending, seq)
		c.lock.Unlock()
	}()

	data, err := msgs.Encode(msg, seq)
	if err != nil {
		return nil, err
	}
	token := c.Queue.Pub(c.Ref.Topic(TopicCmd), data)
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, err
	}
	select {
	case reply := <-replyCh:
		if cmdErr, ok := reply.(*msgs.CommandErr); ok {
			return nil, cmdErr
		}
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) handleMsg(topic string, payload []byte) {
	typed, err := msgs.DecodeTyped(payload)
	if err != nil {
		glog.Warningf("bad message on %q: %v", topic, err)
		return
	}
	msg, err := typed.Decode()
	if err != nil {
		glog.Warningf("%q: %v", topic, err)
		return
	}
	if typed.IsEvent() {
		if h := c.OnEvent; h != nil {
			h(msg)
		}
		return
	}
	if !typed.IsReply() {
		return
	}
	c.lock.Lock()
	replyCh := c.pending[typed.Sequence]
	c.lock.Unlock()
	if replyCh != nil {
		select {
		case replyCh <- msg:
		default:
		}
	}
}
