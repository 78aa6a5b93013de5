package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/alpharx/pkg/msgs"
)

// PublishTimeout bounds waiting for the broker to take a message.
const PublishTimeout = time.Second

// Bridge connects a receiver to the broker. It publishes events, keeps
// the retained meta and answers commands using Handler.
type Bridge struct {
	Queue   *Queue
	Ref     DeviceRef
	Handler msgs.CommandHandler

	metaJSON []byte
}

// NewBridge creates a Bridge. The will clears the retained meta if the
// connection drops.
func NewBridge(brokerURL string, ref DeviceRef, meta DeviceMeta, handler msgs.CommandHandler) (*Bridge, error) {
	if !ref.IsValid() {
		return nil, fmt.Errorf("invalid device ref %q", ref.Name())
	}
	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+ref.Topic(TopicMeta), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("alpharx:" + ref.Name())
	}
	b := &Bridge{
		Queue:    NewQueue(opts, topicPrefix),
		Ref:      ref,
		Handler:  handler,
		metaJSON: metaJSON,
	}
	b.Queue.OnConnect = func(*Queue) { b.onConnected() }
	return b, nil
}

// SendEvent implements rx.Publisher.
func (b *Bridge) SendEvent(ctx context.Context, msg msgs.Message) error {
	data, err := msgs.Encode(msg, 0)
	if err != nil {
		return err
	}
	return b.publish(TopicMsg, data)
}

// Run implements framework.Runnable. The command topic is subscribed
// once connected and again on every reconnect.
func (b *Bridge) Run(ctx context.Context) error {
	token := b.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("connect error: %w", err)
	}
	var sub *Subscription
	if b.Handler != nil {
		sub = b.Queue.Sub(b.Ref.Topic(TopicCmd), b.handleCommand)
		if err := sub.Wait(); err != nil {
			b.Queue.Close()
			return fmt.Errorf("subscribe %s error: %w", b.Ref.Topic(TopicCmd), err)
		}
	}
	<-ctx.Done()
	if sub != nil {
		sub.Close()
	}
	b.Queue.PubWith(b.Ref.Topic(TopicMeta), nil, 1, true).WaitTimeout(PublishTimeout)
	b.Queue.Close()
	return ctx.Err()
}

func (b *Bridge) onConnected() {
	b.Queue.PubWith(b.Ref.Topic(TopicMeta), b.metaJSON, 1, true)
}

func (b *Bridge) handleCommand(topic string, payload []byte) {
	reply, err := msgs.ReplyTo(context.Background(), b.Handler, payload)
	if err != nil {
		glog.Warningf("bad command on %q: %v", topic, err)
		return
	}
	if reply == nil {
		return
	}
	if err := b.publish(TopicMsg, reply); err != nil {
		glog.Errorf("reply failed: %v", err)
	}
}

func (b *Bridge) publish(name string, data []byte) error {
	token := b.Queue.Pub(b.Ref.Topic(name), data)
	if !token.WaitTimeout(PublishTimeout) {
		return fmt.Errorf("publish %s: timeout", name)
	}
	return token.Error()
}
