// Package bootstrap opens the configured store and locker for the binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"weavebooks/internal/app"
	"weavebooks/internal/config"
	corelock "weavebooks/internal/core/lock"
	"weavebooks/internal/infrastructure/lock"
	"weavebooks/internal/infrastructure/storage/memory"
	"weavebooks/internal/infrastructure/storage/mongo"
	"weavebooks/internal/infrastructure/storage/postgres"
	"weavebooks/pkg/logger"
)

// Backend is an opened store.
type Backend struct {
	Driver string
	Repos  app.Repositories
	Ping   func(ctx context.Context) error
	close  func(ctx context.Context)
}

// Close releases the store connections.
func (b *Backend) Close(ctx context.Context) {
	if b != nil && b.close != nil {
		b.close(ctx)
	}
}

// OpenStore connects to the store selected by STORE_DRIVER and applies its schema.
func OpenStore(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
		poolCfg.MaxConns = cfg.DBMaxConns
		pool, err := postgres.NewPool(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		pool.LogStats(ctx)
		return &Backend{
			Driver: cfg.StoreDriver,
			Repos:  postgres.NewStore(pool, cfg.NumeratorOptions()).Repositories(),
			Ping:   func(ctx context.Context) error { return pool.Ping(ctx) },
			close:  func(context.Context) { pool.Close() },
		}, nil

	case config.DriverMongo:
		store, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		return &Backend{
			Driver: cfg.StoreDriver,
			Repos:  store.Repositories(),
			Ping:   store.Ping,
			close: func(ctx context.Context) {
				if err := store.Close(ctx); err != nil {
					logger.Warn(ctx, "mongo disconnect failed", "error", err)
				}
			},
		}, nil

	case config.DriverMemory:
		logger.Warn(ctx, "using the in-memory store, data is lost on exit")
		return &Backend{Driver: cfg.StoreDriver, Repos: memory.New().Repositories()}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// RedisOptions builds the go-redis options from the configuration.
func RedisOptions(cfg *config.Config) *redis.Options {
	return &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
}

// NewLocker returns a redis locker when redis is configured, otherwise an
// in-process one. The returned close func is never nil.
func NewLocker(ctx context.Context, cfg *config.Config) (corelock.Locker, func() error, error) {
	if !cfg.RedisEnabled() {
		logger.Info(ctx, "redis not configured, document locks are process-local")
		return corelock.NewLocal(0), func() error { return nil }, nil
	}
	rdb := redis.NewClient(RedisOptions(cfg))
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return lock.NewRedis(rdb), rdb.Close, nil
}

// Services wires the domain services over backend.
func Services(ctx context.Context, cfg *config.Config, backend *Backend) (*app.Services, func() error, error) {
	locker, closeLocker, err := NewLocker(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return app.New(backend.Repos, app.Options{Locker: locker, LockTTL: cfg.LockTTL}), closeLocker, nil
}
