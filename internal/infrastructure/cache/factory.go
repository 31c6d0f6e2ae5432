package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fuelops/backend/internal/infrastructure/config"
)

// FactoryOption configures NewWorkspaceStore
type FactoryOption func(*factory)

type factory struct {
	logger      *zap.Logger
	pingTimeout time.Duration
}

// WithLogger sets the logger used to report the chosen store
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *factory) {
		f.logger = logger
	}
}

// WithPingTimeout bounds the Redis availability check
func WithPingTimeout(d time.Duration) FactoryOption {
	return func(f *factory) {
		f.pingTimeout = d
	}
}

// NewWorkspaceStore returns a Redis store when Redis is enabled and answers,
// and an in-memory store otherwise.
func NewWorkspaceStore(cfg config.RedisConfig, ttl time.Duration, opts ...FactoryOption) ClosableWorkspaceStore {
	f := &factory{
		logger:      zap.NewNop(),
		pingTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}

	if !cfg.Enabled {
		f.logger.Info("Using in-memory workspace store", zap.Duration("ttl", ttl))
		return NewInMemoryWorkspaceStore(ttl)
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: f.pingTimeout,
		MaxRetries:  -1,
	})

	ctx, cancel := context.WithTimeout(context.Background(), f.pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		f.logger.Warn("Redis unavailable, falling back to in-memory workspace store. "+
			"Workspaces will not be shared between instances.",
			zap.String("addr", cfg.Addr()),
			zap.Error(err),
		)
		return NewInMemoryWorkspaceStore(ttl)
	}

	f.logger.Info("Using Redis workspace store", zap.String("addr", cfg.Addr()), zap.Duration("ttl", ttl))
	return NewRedisWorkspaceStore(client, ttl)
}
