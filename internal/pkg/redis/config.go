package redis

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config 对应配置文件的 redis 段
//
// 一个地址为单机；设置 master_name 走哨兵；多个地址且无 master_name 为集群。
type Config struct {
	Addrs        []string      `mapstructure:"addrs"`
	MasterName   string        `mapstructure:"master_name"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`
}

func DefaultConfig() *Config {
	return &Config{
		Addrs:        []string{"localhost:6379"},
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MaxRetries:   3,
	}
}

// Mode 日志中展示的部署形态
func (c *Config) Mode() string {
	switch {
	case c.MasterName != "":
		return "sentinel"
	case len(c.Addrs) > 1:
		return "cluster"
	default:
		return "standalone"
	}
}

func (c *Config) Validate() error {
	switch {
	case len(c.Addrs) == 0:
		return errors.New("redis: addrs is required")
	case c.DB < 0 || c.DB > 15:
		return errors.New("redis: db must be between 0 and 15")
	case c.PoolSize <= 0:
		return errors.New("redis: pool_size must be > 0")
	case c.MinIdleConns < 0 || c.MinIdleConns > c.PoolSize:
		return errors.New("redis: min_idle_conns must be between 0 and pool_size")
	case c.DialTimeout <= 0:
		return errors.New("redis: dial_timeout must be > 0")
	case c.MaxRetries < 0:
		return errors.New("redis: max_retries must be >= 0")
	}
	return nil
}

func (c *Config) universalOptions() *redis.UniversalOptions {
	return &redis.UniversalOptions{
		Addrs:        c.Addrs,
		MasterName:   c.MasterName,
		Username:     c.Username,
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
		MaxRetries:   c.MaxRetries,
	}
}
