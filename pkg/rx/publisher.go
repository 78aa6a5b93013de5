package rx

import (
	"context"
	"errors"

	fx "github.com/robotalks/alpharx/pkg/framework"
	"github.com/robotalks/alpharx/pkg/msgs"
)

// ErrUnknownBackend indicates the line backend is not supported.
var ErrUnknownBackend = errors.New("unknown backend")

// Publisher delivers receiver events.
type Publisher interface {
	SendEvent(ctx context.Context, msg msgs.Message) error
}

// PublisherFunc is the func form of Publisher.
type PublisherFunc func(ctx context.Context, msg msgs.Message) error

// SendEvent implements Publisher.
func (f PublisherFunc) SendEvent(ctx context.Context, msg msgs.Message) error {
	return f(ctx, msg)
}

// PublisherMux fans events out to multiple Publishers.
type PublisherMux struct {
	Publishers []Publisher
}

// SendEvent implements Publisher. Every publisher is tried, the failures
// are aggregated.
func (m *PublisherMux) SendEvent(ctx context.Context, msg msgs.Message) error {
	var errs fx.AggregatedError
	for _, p := range m.Publishers {
		errs.Add(p.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// Add adds more publishers.
func (m *PublisherMux) Add(pubs ...Publisher) {
	m.Publishers = append(m.Publishers, pubs...)
}
