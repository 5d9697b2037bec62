package cache

import (
	"context"

	"github.com/goliatone/go-user-cache/internal/cacheinfra"
)

// Supported backends.
const (
	BackendMemory = cacheinfra.BackendMemory
	BackendRedis  = cacheinfra.BackendRedis
)

// Supported Redis codecs.
const (
	CodecMsgpack = cacheinfra.CodecMsgpack
	CodecJSON    = cacheinfra.CodecJSON
)

// ErrBackendUnavailable is returned by NewStore when the backend cannot be reached.
var ErrBackendUnavailable = cacheinfra.ErrBackendUnavailable

// Config exposes cache configuration options for consumers of the cache package.
type Config = cacheinfra.Config

// MemoryConfig configures the in-process sturdyc backend.
type MemoryConfig = cacheinfra.MemoryConfig

// RedisConfig configures the Redis backend.
type RedisConfig = cacheinfra.RedisConfig

// ConfigError reports an invalid configuration field.
type ConfigError = cacheinfra.ConfigError

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return cacheinfra.DefaultConfig()
}

// NewStore constructs the backend selected by cfg.Backend. Redis stores are
// pinged before being returned.
func NewStore[T any](ctx context.Context, cfg Config) (Store[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Backend == BackendMemory {
		store, err := cacheinfra.NewMemoryStore[T](cfg.Memory)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	store, err := cacheinfra.NewRedisStore[T](ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	return store, nil
}
