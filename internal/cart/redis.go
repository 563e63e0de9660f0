package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MouraVocal/vendas-pascoa/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisSaver keeps the serialized line set under a fixed per-session
// key. Abandoned carts expire after the TTL.
type RedisSaver struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
}

func NewRedisSaver(client *redis.Client, sessionID string) *RedisSaver {
	return &RedisSaver{
		client:    client,
		sessionID: sessionID,
		ttl:       90 * 24 * time.Hour,
	}
}

func (r *RedisSaver) Load(ctx context.Context) ([]domain.CartLine, error) {
	data, err := r.client.Get(ctx, cartKey(r.sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSavedCart
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var lines []domain.CartLine
	if err2 := json.Unmarshal(data, &lines); err2 != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err2)
	}

	return lines, nil
}

func (r *RedisSaver) Save(ctx context.Context, lines []domain.CartLine) error {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	if err := r.client.Set(ctx, cartKey(r.sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
