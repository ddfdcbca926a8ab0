package requestlog

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/georgemunganga/storefront-api/internal/infrastructure/config"
)

const defaultKeyPrefix = "storefront:inflight:"

// Reserver marks request ids as in flight so concurrent duplicates are
// turned away before either reaches the database.
type Reserver interface {
	// Reserve returns false when requestID is already reserved.
	Reserve(ctx context.Context, requestID string) (bool, error)
	Release(ctx context.Context, requestID string) error
}

// NoopReserver grants every reservation. Used when Redis is disabled.
type NoopReserver struct{}

func (NoopReserver) Reserve(context.Context, string) (bool, error) { return true, nil }
func (NoopReserver) Release(context.Context, string) error         { return nil }

// RedisReserver holds reservations as Redis keys with a TTL, so a crashed
// process cannot block a request id forever.
type RedisReserver struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisReserver creates a reserver on an existing client.
func NewRedisReserver(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisReserver {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisReserver{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Reserve uses SET NX with the TTL as a single atomic operation.
func (r *RedisReserver) Reserve(ctx context.Context, requestID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.keyPrefix+requestID, "1", r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve request %s: %w", requestID, err)
	}
	return ok, nil
}

func (r *RedisReserver) Release(ctx context.Context, requestID string) error {
	if err := r.client.Del(ctx, r.keyPrefix+requestID).Err(); err != nil {
		return fmt.Errorf("failed to release request %s: %w", requestID, err)
	}
	return nil
}

var (
	_ Reserver = NoopReserver{}
	_ Reserver = (*RedisReserver)(nil)
)
