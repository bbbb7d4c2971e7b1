package data

import (
	"errors"
	"fmt"

	"github.com/lk2023060901/model-catalog/internal/auth/store"
	"github.com/lk2023060901/model-catalog/internal/conf"
	"github.com/lk2023060901/model-catalog/internal/pkg/logger"
	"github.com/lk2023060901/model-catalog/internal/pkg/redis"
	"github.com/lk2023060901/model-catalog/internal/supabase"
	"go.uber.org/zap"
)

// Data 服务端共享的外部资源
type Data struct {
	// Supabase 未配置时为 nil，页面提示配置缺失
	Supabase    *supabase.Client
	RedisClient *redis.Client
	Sessions    store.Store
	Logger      *logger.Logger
}

func NewData(config *conf.Config, log *logger.Logger) (*Data, func(), error) {
	supabaseClient, err := initSupabase(config, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init supabase client: %w", err)
	}

	var redisClient *redis.Client
	if config.Session.Store == "redis" {
		redisClient, err = redis.New(&config.Redis, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
	}

	d := &Data{
		Supabase:    supabaseClient,
		RedisClient: redisClient,
		Sessions:    initSessions(config, redisClient),
		Logger:      log,
	}

	cleanup := func() {
		log.Info("cleaning up data resources")

		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Warn("failed to close redis", zap.Error(err))
			}
		}
	}

	return d, cleanup, nil
}

// Configured 外部认证/数据服务是否可用
func (d *Data) Configured() bool {
	return d.Supabase != nil
}

func initSupabase(config *conf.Config, log *logger.Logger) (*supabase.Client, error) {
	if err := config.Supabase.Validate(); err != nil {
		if errors.Is(err, conf.ErrNotConfigured) {
			log.Warn("supabase is not configured, login and model pages are disabled")
			return nil, nil
		}
		return nil, err
	}

	client, err := supabase.New(&supabase.Config{
		URL:     config.Supabase.URL,
		AnonKey: config.Supabase.AnonKey,
		Timeout: config.Supabase.Timeout,
	}, log)
	if err != nil {
		return nil, err
	}

	log.Info("supabase client initialized",
		zap.String("auth_url", config.Supabase.AuthURL()),
		zap.String("rest_url", config.Supabase.RestURL()),
	)
	return client, nil
}

func initSessions(config *conf.Config, redisClient *redis.Client) store.Store {
	if redisClient != nil {
		return store.NewRedisStore(redisClient, config.Session.TTL)
	}
	return store.NewMemoryStore(config.Session.TTL)
}
