package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/port"
)

// setupTestRedis starts an in-memory Redis and returns a slot pointed at it.
func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisSlot, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisSlot(client, ttl), mr
}

func TestRedisSlot_SetGet(t *testing.T) {
	slot, mr := setupTestRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, slot.Set(ctx, "cart", []byte(`[]`)))

	got, err := slot.Get(ctx, "cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	stored, err := mr.Get(slotKeyPrefix + "cart")
	require.NoError(t, err)
	assert.Equal(t, `[]`, stored)
	assert.Zero(t, mr.TTL(slotKeyPrefix+"cart"))
}

func TestRedisSlot_Missing(t *testing.T) {
	slot, _ := setupTestRedis(t, 0)

	_, err := slot.Get(context.Background(), "cart")

	assert.ErrorIs(t, err, port.ErrSlotEmpty)
}

func TestRedisSlot_TTL(t *testing.T) {
	slot, mr := setupTestRedis(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, slot.Set(ctx, "cart", []byte(`[]`)))
	assert.Equal(t, time.Hour, mr.TTL(slotKeyPrefix+"cart"))

	mr.FastForward(2 * time.Hour)
	_, err := slot.Get(ctx, "cart")
	assert.ErrorIs(t, err, port.ErrSlotEmpty)
}

func TestRedisSlot_ServerDown(t *testing.T) {
	slot, mr := setupTestRedis(t, 0)
	mr.Close()

	_, err := slot.Get(context.Background(), "cart")
	require.Error(t, err)
	assert.NotErrorIs(t, err, port.ErrSlotEmpty)

	assert.Error(t, slot.Set(context.Background(), "cart", []byte(`[]`)))
}

func TestCartStore_OverRedis(t *testing.T) {
	slot, mr := setupTestRedis(t, 0)
	store, _ := newStore(slot)
	ctx := context.Background()

	store.Save(ctx, sampleSnapshot())
	assert.Len(t, store.Load(ctx), 3)

	mr.Set(slotKeyPrefix+DefaultCartKey, "garbage")
	assert.Empty(t, store.Load(ctx))
}
