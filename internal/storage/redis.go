package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr      string `yaml:"addr" toml:"addr"`
	Password  string `yaml:"password" toml:"password"` //nolint:gosec // connection config
	DB        int    `yaml:"db" toml:"db"`
	KeyPrefix string `yaml:"key_prefix" toml:"key_prefix"`
}

// RedisBackend stores documents as plain string values.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(ctx context.Context, cfg RedisConfig) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return &RedisBackend{client: client, prefix: cfg.KeyPrefix}, nil
}

// RedisKey is the redis key a board key is stored under.
func RedisKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}

func (r *RedisBackend) Name() string { return BackendRedis }

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, RedisKey(r.prefix, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis: get %s: %w", key, err)
	}
	return data, nil
}

func (r *RedisBackend) Put(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, RedisKey(r.prefix, key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}

func (r *RedisBackend) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis: close: %w", err)
	}
	return nil
}
