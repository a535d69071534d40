package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces keys written by RedisStore.
const DefaultKeyPrefix = "lexnav:"

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	// Addr is host:port or a full redis:// / rediss:// URL.
	Addr     string
	Password string
	DB       int
	Prefix   string
	// DefaultTTL applies when Set is called with ttl <= 0. Zero means no expiry.
	DefaultTTL time.Duration
}

// RedisStore is a Store backed by Redis.
type RedisStore struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, config RedisConfig) (*RedisStore, error) {
	var client *redis.Client

	if strings.HasPrefix(config.Addr, "redis://") || strings.HasPrefix(config.Addr, "rediss://") {
		options, err := redis.ParseURL(config.Addr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client = redis.NewClient(options)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     config.Addr,
			Password: config.Password,
			DB:       config.DB,
		})
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreFromClient(client, config.Prefix, config.DefaultTTL), nil
}

// NewRedisStoreFromClient wraps an existing client. An empty prefix uses DefaultKeyPrefix.
func NewRedisStoreFromClient(client *redis.Client, prefix string, defaultTTL time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix, defaultTTL: defaultTTL}
}

func (redisStore *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := redisStore.client.Get(ctx, redisStore.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s from Redis: %w", key, err)
	}
	return value, true, nil
}

func (redisStore *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = redisStore.defaultTTL
	}
	if err := redisStore.client.Set(ctx, redisStore.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s to Redis: %w", key, err)
	}
	return nil
}

func (redisStore *RedisStore) Delete(ctx context.Context, key string) error {
	if err := redisStore.client.Del(ctx, redisStore.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s from Redis: %w", key, err)
	}
	return nil
}

func (redisStore *RedisStore) Close() error {
	return redisStore.client.Close()
}
