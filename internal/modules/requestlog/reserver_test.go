package requestlog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisReserver(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	r := NewRedisReserver(client, "storefront:test:", time.Minute)
	requestID := uuid.NewString()
	t.Cleanup(func() { client.Del(ctx, "storefront:test:"+requestID) })

	ok, err := r.Reserve(ctx, requestID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Reserve(ctx, requestID)
	require.NoError(t, err)
	assert.False(t, ok, "second reservation must be refused")

	ttl, err := client.TTL(ctx, "storefront:test:"+requestID).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, r.Release(ctx, requestID))
	ok, err = r.Reserve(ctx, requestID)
	require.NoError(t, err)
	assert.True(t, ok, "released id can be reserved again")
}

func TestRedisReserver_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { client.Close() })

	r := NewRedisReserver(client, "", time.Minute)

	_, err := r.Reserve(context.Background(), "r1")
	assert.ErrorContains(t, err, "failed to reserve request r1")
	assert.Error(t, r.Release(context.Background(), "r1"))
}
