package cacheinfra

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps encoded values in Redis.
type RedisStore[T any] struct {
	client *redis.Client
	codec  Codec[T]
	ttl    time.Duration
}

// NewRedisStore validates the configuration, connects and pings the server.
// A failed ping is reported as ErrBackendUnavailable wrapping the cause.
func NewRedisStore[T any](ctx context.Context, cfg RedisConfig) (*RedisStore[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}

	codec, err := NewCodec[T](cfg.Codec)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", ErrBackendUnavailable, opts.Addr, err)
	}

	return NewRedisStoreWithClient(client, codec, cfg.TTL), nil
}

// NewRedisStoreWithClient wraps an existing client. The store takes ownership of it.
func NewRedisStoreWithClient[T any](client *redis.Client, codec Codec[T], ttl time.Duration) *RedisStore[T] {
	return &RedisStore[T]{client: client, codec: codec, ttl: ttl}
}

func redisOptions(cfg RedisConfig) (*redis.Options, error) {
	if cfg.URL != "" {
		opts, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, &ConfigError{Field: "Redis.URL", Message: err.Error()}
		}
		return opts, nil
	}

	return &redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}

// Get returns the decoded value stored under key. redis.Nil is reported as a miss.
func (s *RedisStore[T]) Get(ctx context.Context, key string) (T, bool, error) {
	var zero T

	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("redis get %s: %w", key, err)
	}

	value, err := s.codec.Unmarshal(data)
	if err != nil {
		return zero, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return value, true, nil
}

// Set encodes value and stores it under key with the configured TTL.
func (s *RedisStore[T]) Set(ctx context.Context, key string, value T) error {
	data, err := s.codec.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key. DEL on an absent key is a no-op.
func (s *RedisStore[T]) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// Ping checks the connection.
func (s *RedisStore[T]) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisStore[T]) Close() error {
	return s.client.Close()
}
