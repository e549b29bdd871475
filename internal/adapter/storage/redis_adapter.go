package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront/internal/port"
)

const slotKeyPrefix = "storefront:slot:"

// RedisSlot stores slot values as plain Redis strings.
type RedisSlot struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSlot returns a slot backed by client. A ttl of zero keeps values
// until they are overwritten.
func NewRedisSlot(client *redis.Client, ttl time.Duration) *RedisSlot {
	return &RedisSlot{client: client, ttl: ttl}
}

func (r *RedisSlot) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, slotKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrSlotEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (r *RedisSlot) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, slotKeyPrefix+key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
