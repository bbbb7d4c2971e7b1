package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/model-catalog/internal/pkg/errors"
	"github.com/lk2023060901/model-catalog/internal/pkg/logger"
	"github.com/lk2023060901/model-catalog/internal/pkg/redis"
	"github.com/lk2023060901/model-catalog/internal/pkg/response"
	"github.com/lk2023060901/model-catalog/internal/pkg/validator"
	"go.uber.org/zap"
)

// RateLimiterConfig 限流配置
type RateLimiterConfig struct {
	// 时间窗口内允许的最大请求数
	MaxRequests int
	// 时间窗口（秒）
	WindowSeconds int
	// key 中区分端点的名字，例如 login、register
	Scope string
	// 超限时的处理；为空时返回 429 JSON
	OnLimited func(c *gin.Context, retryAfter int)
}

// slidingWindowScript 原子性滑动窗口：返回 {allowed, remaining, reset_time}
const slidingWindowScript = `
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

	local current = redis.call('ZCARD', key)
	if current < limit then
		redis.call('ZADD', key, now, member)
		redis.call('EXPIRE', key, window)
		return {1, limit - current - 1, now + window}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')[2]
	return {0, 0, tonumber(oldest) + window}
`

// RateLimiter 基于 Redis 的滑动窗口限流中间件（按客户端 IP）
func RateLimiter(redisClient *redis.Client, cfg RateLimiterConfig, log *logger.Logger) gin.HandlerFunc {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 100
	}
	if cfg.WindowSeconds <= 0 {
		cfg.WindowSeconds = 60
	}
	if cfg.Scope == "" {
		cfg.Scope = "global"
	}
	if cfg.OnLimited == nil {
		cfg.OnLimited = func(c *gin.Context, retryAfter int) {
			response.ErrorWithCode(c, apperrors.ErrTooManyRequests,
				fmt.Sprintf("try again in %d seconds", retryAfter))
		}
	}

	return func(c *gin.Context) {
		key := fmt.Sprintf("rate_limit:%s:%s", cfg.Scope, validator.ClientKey(c.ClientIP()))

		allowed, remaining, resetTime, err := checkRateLimit(c.Request.Context(), redisClient, key, cfg)
		if err != nil {
			log.Error("rate limiter error", zap.Error(err), zap.String("key", key))
			// 限流器故障时降级放行
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime, 10))

		if !allowed {
			retryAfter := int(resetTime - time.Now().Unix())
			if retryAfter <= 0 {
				retryAfter = cfg.WindowSeconds
			}
			log.Warn("rate limit exceeded", zap.String("key", key))
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			cfg.OnLimited(c, retryAfter)
			c.Abort()
			return
		}

		c.Next()
	}
}

func checkRateLimit(ctx context.Context, redisClient *redis.Client, key string, cfg RateLimiterConfig) (allowed bool, remaining int, resetTime int64, err error) {
	now := time.Now()
	// 同一秒内的多次请求需要不同的 member
	member := strconv.FormatInt(now.UnixNano(), 10)

	result, err := redisClient.Eval(ctx, slidingWindowScript, []string{key}, now.Unix(), cfg.WindowSeconds, cfg.MaxRequests, member)
	if err != nil {
		return false, 0, 0, err
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 3 {
		return false, 0, 0, fmt.Errorf("invalid rate limit result")
	}

	allowedInt, _ := values[0].(int64)
	remainingInt, _ := values[1].(int64)
	resetTimeInt, _ := values[2].(int64)

	return allowedInt == 1, int(remainingInt), resetTimeInt, nil
}

// LoginRateLimiter 登录端点限流，默认 5 次 / 5 分钟
func LoginRateLimiter(redisClient *redis.Client, maxRequests, windowSeconds int, onLimited func(*gin.Context, int), log *logger.Logger) gin.HandlerFunc {
	if maxRequests <= 0 {
		maxRequests = 5
	}
	if windowSeconds <= 0 {
		windowSeconds = 300
	}
	return RateLimiter(redisClient, RateLimiterConfig{
		MaxRequests:   maxRequests,
		WindowSeconds: windowSeconds,
		Scope:         "login",
		OnLimited:     onLimited,
	}, log)
}

// RegisterRateLimiter 注册端点限流，默认 3 次 / 1 小时
func RegisterRateLimiter(redisClient *redis.Client, maxRequests, windowSeconds int, onLimited func(*gin.Context, int), log *logger.Logger) gin.HandlerFunc {
	if maxRequests <= 0 {
		maxRequests = 3
	}
	if windowSeconds <= 0 {
		windowSeconds = 3600
	}
	return RateLimiter(redisClient, RateLimiterConfig{
		MaxRequests:   maxRequests,
		WindowSeconds: windowSeconds,
		Scope:         "register",
		OnLimited:     onLimited,
	}, log)
}
