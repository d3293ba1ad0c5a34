package messaging

import (
	"context"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// NoopBroker drops every message. Used when no broker is configured.
type NoopBroker struct{}

func NewNoopBroker() Broker {
	return NoopBroker{}
}

func (NoopBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	return nil
}

// Subscribe returns a channel that closes when ctx is done.
func (NoopBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (NoopBroker) Close() error {
	return nil
}
