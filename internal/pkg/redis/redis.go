package redis

import (
	"context"
	"fmt"

	"github.com/lk2023060901/model-catalog/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client 会话存储与限流共用的 Redis 连接
type Client struct {
	logger *logger.Logger
	rdb    redis.UniversalClient
}

// New 连接 Redis，首次 Ping 在 DialTimeout 内失败则返回错误
func New(cfg *Config, log *logger.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := &Client{
		logger: log.Named("redis"),
		rdb:    redis.NewUniversalClient(cfg.universalOptions()),
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		_ = client.rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	client.logger.Info("redis connected", zap.String("mode", cfg.Mode()), zap.Strings("addrs", cfg.Addrs))
	return client, nil
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		c.logger.Warn("redis ping failed", zap.Error(err))
		return err
	}
	return nil
}

func (c *Client) Close() error {
	if err := c.rdb.Close(); err != nil {
		c.logger.Error("close redis client failed", zap.Error(err))
		return err
	}
	return nil
}
