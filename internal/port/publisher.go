package port

import "context"

// EventPublisher sends a payload to the message sink under topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}
