package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yashitanamdeo/janmat-sub001/internal/config"
	"github.com/yashitanamdeo/janmat-sub001/internal/lock"
)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis builds a client from REDIS_URL when set, otherwise from the discrete settings.
// An unreachable server is logged, not fatal.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			logger.Warn("invalid REDIS_URL; falling back to REDIS_ADDR", zap.Error(err))
		} else {
			opts = parsed
		}
	}
	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", opts.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", opts.Addr))
	}

	return &Redis{Client: client}
}

// Locker returns the quick-action lock. It is shared through Redis when the server
// answers and process local otherwise.
func (r *Redis) Locker(ctx context.Context, prefix string, logger *zap.Logger) lock.Locker {
	if err := r.Ping(ctx); err != nil {
		logger.Warn("redis unavailable; quick action lock is process local", zap.Error(err))
		return lock.NewLocalLocker()
	}
	return lock.NewRedisLocker(r.Client, prefix)
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
