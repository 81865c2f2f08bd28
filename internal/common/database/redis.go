// internal/common/database/redis.go
package database

import (
	"context"
	"fmt"
	"time"

	"risk-workers/internal/common/config"
	"risk-workers/internal/common/logger"

	"github.com/redis/go-redis/v9"
)

// RedisClient holds the connection pool behind the redis history backend.
type RedisClient struct {
	Client *redis.Client
}

// NewRedis builds the pool without dialing.
func NewRedis(cfg config.RedisConfig) *RedisClient {
	return &RedisClient{Client: redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})}
}

// OpenRedis builds the pool and waits until the server answers PING.
func OpenRedis(ctx context.Context, cfg config.RedisConfig, policy ConnectPolicy, log logger.Logger) (*RedisClient, error) {
	c := NewRedis(cfg)
	if err := policy.wait(ctx, log, "Redis connection", c.Ping); err != nil {
		_ = c.Close()
		return nil, err
	}
	log.Info("connected to redis", map[string]interface{}{"address": cfg.Address, "db": cfg.DB})
	return c, nil
}

func (c *RedisClient) Ping(ctx context.Context) error {
	if err := c.Client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (c *RedisClient) Close() error {
	if c.Client != nil {
		return c.Client.Close()
	}
	return nil
}
