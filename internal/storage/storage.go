// Package storage persists boards as a single JSON document under a
// well-known key, on one of several interchangeable backends.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// DefaultKey is the key the board document is stored under.
const DefaultKey = "kanban-board-data"

// ErrNotFound is returned by backends when nothing is stored under a key.
var ErrNotFound = errors.New("key not found")

// Backend stores opaque documents by key.
type Backend interface {
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendS3     = "s3"
)

// Config selects and configures a backend.
type Config struct {
	Backend string       `yaml:"backend" toml:"backend"`
	Key     string       `yaml:"key" toml:"key"`
	Dir     string       `yaml:"dir" toml:"dir"`
	SQLite  SQLiteConfig `yaml:"sqlite" toml:"sqlite"`
	Redis   RedisConfig  `yaml:"redis" toml:"redis"`
	S3      S3Config     `yaml:"s3" toml:"s3"`
}

// Validate checks the settings required by the selected backend.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendFile, BackendSQLite:
		return nil
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New("redis addr is required")
		}
		return nil
	case BackendS3:
		if c.S3.Endpoint == "" {
			return errors.New("S3 endpoint is required")
		}
		if c.S3.Bucket == "" {
			return errors.New("S3 bucket is required")
		}
		return nil
	default:
		return fmt.Errorf("unknown storage backend %q", c.Backend)
	}
}

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("storage.Open: %w", err)
	}
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryBackend(), nil
	case BackendFile:
		return NewFileBackend(cfg.Dir)
	case BackendSQLite:
		return NewSQLiteBackend(cfg.SQLite.Path)
	case BackendRedis:
		return NewRedisBackend(ctx, cfg.Redis)
	default:
		return NewS3Backend(ctx, cfg.S3)
	}
}
