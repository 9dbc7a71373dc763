package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/settlement/internal/domain/shared"
	"github.com/erp/settlement/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Idempotency backends
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// IdempotencyStoreFactory builds the acknowledgement store named by config
type IdempotencyStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	sweepEvery            time.Duration
}

// IdempotencyStoreFactoryOption is a functional option for the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory store. Default is true.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithSweepInterval sets how often the in-memory store drops expired keys
func WithSweepInterval(d time.Duration) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) {
		f.sweepEvery = d
	}
}

// NewIdempotencyStoreFactory creates a new factory
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		sweepEvery:            5 * time.Minute,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns the store for backend
func (f *IdempotencyStoreFactory) Create(ctx context.Context, backend string) (shared.IdempotencyStore, error) {
	switch backend {
	case BackendMemory, "":
		f.logger.Info("Using in-memory acknowledgement store")
		return NewInMemoryIdempotencyStore(f.sweepEvery), nil
	case BackendRedis:
		client, err := NewRedisClient(ctx, f.redisConfig.Addr(), f.redisConfig.Password, f.redisConfig.DB)
		if err == nil {
			f.logger.Info("Using Redis acknowledgement store", zap.String("addr", f.redisConfig.Addr()))
			return NewRedisIdempotencyStore(client, DefaultKeyPrefix), nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis acknowledgement store unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory acknowledgement store. "+
			"Duplicate acknowledgements across instances will not be detected.",
			zap.Error(err),
		)
		return NewInMemoryIdempotencyStore(f.sweepEvery), nil
	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", backend)
	}
}
