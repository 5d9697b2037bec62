package cacheinfra

import (
	"context"

	"github.com/viccon/sturdyc"
)

// MemoryStore keeps values in an in-process sturdyc client.
type MemoryStore[T any] struct {
	client *sturdyc.Client[T]
}

// NewMemoryStore validates the configuration and initializes a sturdyc client.
//
// Early refreshes and missing record storage are left disabled: values are
// only written by explicit Set calls and absent results are never recorded.
func NewMemoryStore[T any](cfg MemoryConfig) (*MemoryStore[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var options []sturdyc.Option
	if cfg.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(cfg.EvictionInterval))
	}

	client := sturdyc.New[T](
		cfg.Capacity,
		cfg.NumShards,
		cfg.TTL,
		cfg.EvictionPercentage,
		options...,
	)

	return &MemoryStore[T]{client: client}, nil
}

// Get returns the cached value for key, if any.
func (s *MemoryStore[T]) Get(_ context.Context, key string) (T, bool, error) {
	value, ok := s.client.Get(key)
	return value, ok, nil
}

// Set stores value under key, replacing any previous entry.
func (s *MemoryStore[T]) Set(_ context.Context, key string, value T) error {
	s.client.Set(key, value)
	return nil
}

// Delete removes key. Deleting an absent key is a no-op.
func (s *MemoryStore[T]) Delete(_ context.Context, key string) error {
	s.client.Delete(key)
	return nil
}

// Len reports the number of entries currently held.
func (s *MemoryStore[T]) Len() int {
	return s.client.Size()
}
