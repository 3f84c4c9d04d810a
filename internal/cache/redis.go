package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long Redis keeps an estimate.
const DefaultTTL = 30 * 24 * time.Hour

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// TTL is the entry lifetime; zero means DefaultTTL.
	TTL time.Duration
}

// RedisCache implements Cache using Redis.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to Redis and checks the connection.
func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	return &RedisCache{
		client: client,
		prefix: "lwe:estimate:",
		ttl:    ttl,
	}, nil
}

func (c *RedisCache) Load(ctx context.Context, key Key) ([]byte, error) {
	data, err := c.client.Get(ctx, c.prefix+string(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get estimate: %w", err)
	}
	return data, nil
}

func (c *RedisCache) Store(ctx context.Context, key Key, data []byte) error {
	if err := c.client.Set(ctx, c.prefix+string(key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set estimate: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key Key) error {
	n, err := c.client.Del(ctx, c.prefix+string(key)).Result()
	if err != nil {
		return fmt.Errorf("delete estimate: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
