package broker

import (
	"context"

	"github.com/fhuszti/filemgr-ms-go/internal/port"
)

type NoopPublisher struct{}

// compile-time check: *NoopPublisher must satisfy port.EventPublisher
var _ port.EventPublisher = (*NoopPublisher)(nil)

func NewNoop() *NoopPublisher {
	return &NoopPublisher{}
}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, payload any) error {
	return nil
}
