package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// RedisSource delivers change events over Redis pub/sub. Each watched
// table maps to one channel; filters are applied client-side.
type RedisSource struct {
	client *redis.Client
	prefix string
}

func NewRedisSource(client *redis.Client) *RedisSource {
	return &RedisSource{
		client: client,
		prefix: "feed",
	}
}

func (s *RedisSource) channel(table string) string {
	return fmt.Sprintf("%s:%s", s.prefix, table)
}

func (s *RedisSource) Subscribe(ctx context.Context, table string, filter *Filter, h Handlers) (Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)

	pubsub := s.client.Subscribe(subCtx, s.channel(table))

	// Wait for subscription confirmation before reporting success.
	if _, err := pubsub.Receive(subCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to %s channel: %w", table, err)
	}

	go func() {
		defer func() {
			if err := pubsub.Close(); err != nil {
				log.Printf("error closing pubsub for %s: %v", table, err)
			}
		}()

		ch := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Printf("failed to parse %s feed event: %v", table, err)
					continue
				}
				Deliver(h, filter, ev)
			}
		}
	}()

	return &redisSubscription{cancel: cancel}, nil
}

// Publish pushes an event onto the table's channel. Used by whatever
// writes the catalog, and by tests.
func (s *RedisSource) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal feed event failed: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel(ev.Table), payload).Err(); err != nil {
		return fmt.Errorf("publish feed event failed: %w", err)
	}
	return nil
}

type redisSubscription struct {
	cancel context.CancelFunc
}

func (r *redisSubscription) Close() error {
	r.cancel()
	return nil
}
