// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-user-cache/cache"
	"github.com/goliatone/go-user-cache/store"
	"github.com/goliatone/go-user-cache/usercache"
)

// Config is the full service configuration.
type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Log      LogConfig
}

type HTTPConfig struct {
	Addr            string        `env:"HTTP_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type DatabaseConfig struct {
	Driver      string `env:"DB_DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DB_DSN" envDefault:"file::memory:?cache=shared"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

type CacheConfig struct {
	Backend       string `env:"CACHE_BACKEND" envDefault:"redis"`
	Name          string `env:"CACHE_NAME" envDefault:"user"`
	FailurePolicy string `env:"CACHE_FAILURE_POLICY" envDefault:"degrade"`

	Redis  RedisConfig
	Memory MemoryConfig
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	URL      string        `env:"REDIS_URL"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	Codec    string        `env:"REDIS_CODEC" envDefault:"msgpack"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"0"`
}

type MemoryConfig struct {
	Capacity           int           `env:"MEMORY_CAPACITY" envDefault:"10000"`
	Shards             int           `env:"MEMORY_SHARDS" envDefault:"256"`
	TTL                time.Duration `env:"MEMORY_TTL" envDefault:"8760h"`
	EvictionPercentage int           `env:"MEMORY_EVICTION_PERCENTAGE" envDefault:"10"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks the values that are not delegated to the cache backend.
func (c Config) Validate() error {
	return validation.Errors{
		"http":     c.HTTP.Validate(),
		"database": c.Database.Validate(),
		"cache":    c.Cache.Validate(),
		"log":      c.Log.Validate(),
	}.Filter()
}

func (c HTTPConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.WriteTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.ShutdownTimeout, validation.Required),
	)
}

func (c DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required, validation.In(store.DriverSQLite, store.DriverPostgres)),
		validation.Field(&c.DSN, validation.Required),
	)
}

func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Backend, validation.Required, validation.In(cache.BackendRedis, cache.BackendMemory)),
		validation.Field(&c.FailurePolicy, validation.In(
			usercache.FailurePolicyDegrade.String(),
			usercache.FailurePolicyStrict.String(),
		)),
	)
}

func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.Format, validation.In("json", "console")),
	)
}

// StoreConfig returns the persistent store settings.
func (c Config) StoreConfig() store.Config {
	return store.Config{
		Driver: c.Database.Driver,
		DSN:    c.Database.DSN,
	}
}

// CacheStoreConfig converts the cache section into the backend configuration.
func (c Config) CacheStoreConfig() cache.Config {
	cfg := cache.DefaultConfig()
	cfg.Backend = c.Cache.Backend

	cfg.Redis.Addr = c.Cache.Redis.Addr
	cfg.Redis.URL = c.Cache.Redis.URL
	cfg.Redis.Password = c.Cache.Redis.Password
	cfg.Redis.DB = c.Cache.Redis.DB
	cfg.Redis.Codec = c.Cache.Redis.Codec
	cfg.Redis.TTL = c.Cache.Redis.TTL

	cfg.Memory.Capacity = c.Cache.Memory.Capacity
	cfg.Memory.NumShards = c.Cache.Memory.Shards
	cfg.Memory.TTL = c.Cache.Memory.TTL
	cfg.Memory.EvictionPercentage = c.Cache.Memory.EvictionPercentage

	return cfg
}

// FailurePolicy returns the parsed cache failure policy.
func (c Config) FailurePolicy() (usercache.FailurePolicy, error) {
	return usercache.ParseFailurePolicy(c.Cache.FailurePolicy)
}
