package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/fhuszti/filemgr-ms-go/internal/port"
)

// RedisPublisher sends events over Redis Pub/Sub, one channel per topic.
type RedisPublisher struct {
	client   *redis.Client
	exchange string
}

// compile-time check: *RedisPublisher must satisfy port.EventPublisher
var _ port.EventPublisher = (*RedisPublisher)(nil)

func NewRedisPublisher(addr, password, exchange string) *RedisPublisher {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
	return &RedisPublisher{client: rdb, exchange: exchange}
}

// Channel returns the Pub/Sub channel events of topic are sent on.
func (p *RedisPublisher) Channel(topic string) string {
	return p.exchange + "." + topic
}

func (p *RedisPublisher) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}

	log.Printf("publishing event on %q...", p.Channel(topic))
	if err := p.client.Publish(ctx, p.Channel(topic), data).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}
