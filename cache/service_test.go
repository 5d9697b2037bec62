package cache

import (
	"context"
	"errors"
	"testing"
)

type cachedUser struct {
	ID   string
	Name string
}

func TestNewStore_Memory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendMemory

	store, err := NewStore[cachedUser](context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}

	ctx := context.Background()
	key := NewKeyspace("user").Key("u1")

	if err := store.Set(ctx, key, cachedUser{ID: "u1", Name: "jack"}); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	got, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.Name != "jack" {
		t.Errorf("expected jack, got %q", got.Name)
	}

	if _, isPinger := store.(Pinger); isPinger {
		t.Error("memory store should not need a ping")
	}
}

func TestNewStore_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = "memcached"

	_, err := NewStore[cachedUser](context.Background(), cfg)

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if cfgErr.Field != "Backend" {
		t.Errorf("expected Backend field, got %q", cfgErr.Field)
	}
}

func TestNewStore_RedisUnavailable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Redis.Addr = "127.0.0.1:1"

	_, err := NewStore[cachedUser](context.Background(), cfg)
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("expected ErrBackendUnavailable, got %v", err)
	}
}
