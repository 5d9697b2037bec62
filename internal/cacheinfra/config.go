package cacheinfra

import (
	"errors"
	"time"
)

// Supported cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Supported Redis value codecs.
const (
	CodecMsgpack = "msgpack"
	CodecJSON    = "json"
)

// ErrBackendUnavailable is returned when a cache backend cannot be reached at construction time.
var ErrBackendUnavailable = errors.New("cache backend unavailable")

// Config selects and configures a cache backend.
type Config struct {
	// Backend is either BackendMemory or BackendRedis.
	Backend string

	Memory MemoryConfig
	Redis  RedisConfig
}

// MemoryConfig holds the sturdyc options for the in-process backend.
type MemoryConfig struct {
	// Capacity defines the maximum number of entries that the cache can store.
	// Must be greater than 0.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	// Must be greater than 0. Default: 256
	NumShards int

	// TTL is the time-to-live for cached entries. sturdyc requires a positive
	// value, so the default is long enough to behave as "no expiry".
	TTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int

	// EvictionInterval sets how often the cache checks for expired entries.
	// Zero value uses the sturdyc default.
	EvictionInterval time.Duration
}

// RedisConfig holds the connection options for the Redis backend.
type RedisConfig struct {
	// URL, when set, takes precedence over Addr, Password and DB.
	URL      string
	Addr     string
	Password string
	DB       int

	// TTL of zero stores entries without expiry.
	TTL time.Duration

	// Codec is either CodecMsgpack or CodecJSON.
	Codec string

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Backend: BackendRedis,
		Memory:  DefaultMemoryConfig(),
		Redis: RedisConfig{
			Addr:         "localhost:6379",
			Codec:        CodecMsgpack,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}
}

// DefaultMemoryConfig returns the in-process defaults.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		Capacity:           10000,
		NumShards:          256,
		TTL:                365 * 24 * time.Hour,
		EvictionPercentage: 10,
	}
}

// Validate checks if the configuration values are valid for the selected backend.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
		return c.Memory.Validate()
	case BackendRedis:
		return c.Redis.Validate()
	default:
		return &ConfigError{Field: "Backend", Message: "must be one of memory, redis"}
	}
}

// Validate checks the sturdyc options.
func (c MemoryConfig) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Memory.Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "Memory.NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "Memory.TTL", Message: "must be greater than 0"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "Memory.EvictionPercentage", Message: "must be between 1 and 100"}
	}

	if c.EvictionInterval < 0 {
		return &ConfigError{Field: "Memory.EvictionInterval", Message: "must be non-negative"}
	}

	return nil
}

// Validate checks the Redis connection options.
func (c RedisConfig) Validate() error {
	if c.URL == "" && c.Addr == "" {
		return &ConfigError{Field: "Redis.Addr", Message: "must be set when Redis.URL is empty"}
	}

	if c.DB < 0 {
		return &ConfigError{Field: "Redis.DB", Message: "must be non-negative"}
	}

	if c.TTL < 0 {
		return &ConfigError{Field: "Redis.TTL", Message: "must be non-negative"}
	}

	switch c.Codec {
	case "", CodecMsgpack, CodecJSON:
	default:
		return &ConfigError{Field: "Redis.Codec", Message: "must be one of msgpack, json"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
