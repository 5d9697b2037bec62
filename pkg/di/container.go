package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	"github.com/goliatone/go-user-cache/api"
	"github.com/goliatone/go-user-cache/cache"
	"github.com/goliatone/go-user-cache/config"
	"github.com/goliatone/go-user-cache/entity"
	"github.com/goliatone/go-user-cache/store"
	"github.com/goliatone/go-user-cache/usercache"
)

// Container wires the database, cache store, user service and HTTP handler
// from a single configuration. It owns the database and cache connections.
type Container struct {
	config    config.Config
	logger    *zap.Logger
	db        *bun.DB
	userStore store.UserStore
	cache     cache.Store[entity.User]
	service   *usercache.Service
	handler   *api.Handler
}

// NewContainer opens the database, runs the migration when enabled, connects
// the cache backend and builds the service on top of them.
func NewContainer(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Container, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	policy, err := cfg.FailurePolicy()
	if err != nil {
		return nil, err
	}

	db, err := store.Open(ctx, cfg.StoreConfig(), logger.Named("store"))
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	cacheStore, err := cache.NewStore[entity.User](ctx, cfg.CacheStoreConfig())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache %s: %w", cfg.Cache.Backend, err)
	}

	c := &Container{
		config:    cfg,
		logger:    logger,
		db:        db,
		userStore: store.NewBunUserStore(db),
		cache:     cacheStore,
	}

	c.service = usercache.NewService(c.userStore, c.cache,
		usercache.WithLogger(logger.Named("usercache")),
		usercache.WithFailurePolicy(policy),
		usercache.WithCacheName(cfg.Cache.Name),
	)

	opts := []api.Option{
		api.WithLogger(logger.Named("http")),
		api.WithHealthCheck("database", db.PingContext),
	}
	if p, ok := c.cache.(cache.Pinger); ok {
		opts = append(opts, api.WithHealthCheck("cache", p.Ping))
	}
	c.handler = api.NewHandler(c.service, opts...)

	return c, nil
}

// Config returns the configuration the container was built with.
func (c *Container) Config() config.Config {
	return c.config
}

// DB returns the shared database handle.
func (c *Container) DB() *bun.DB {
	return c.db
}

// Cache returns the cache store used by the service.
func (c *Container) Cache() cache.Store[entity.User] {
	return c.cache
}

// Service returns the user service.
func (c *Container) Service() *usercache.Service {
	return c.service
}

// Handler returns the HTTP router.
func (c *Container) Handler() http.Handler {
	return c.handler.Router()
}

// Close releases the cache client and the database.
func (c *Container) Close() error {
	var errs []error
	if closer, ok := c.cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close cache: %w", err))
		}
	}
	if err := c.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}
