package mock

import (
	"context"
	"sync"

	"github.com/fhuszti/filemgr-ms-go/internal/port"
)

type PublishedEvent struct {
	Topic   string
	Payload any
}

// Publisher records every event it is handed.
type Publisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
	Err    error
}

var _ port.EventPublisher = (*Publisher)(nil)

func (p *Publisher) Publish(ctx context.Context, topic string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Events = append(p.Events, PublishedEvent{Topic: topic, Payload: payload})
	return nil
}

// Topics lists the published topics in order.
func (p *Publisher) Topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Events))
	for _, e := range p.Events {
		out = append(out, e.Topic)
	}
	return out
}
