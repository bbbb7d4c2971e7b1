package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/model-catalog/internal/auth/middleware"
	authservice "github.com/lk2023060901/model-catalog/internal/auth/service"
	catalogservice "github.com/lk2023060901/model-catalog/internal/catalog/service"
	"github.com/lk2023060901/model-catalog/internal/conf"
	"github.com/lk2023060901/model-catalog/internal/pkg/logger"
	"github.com/lk2023060901/model-catalog/internal/pkg/redis"
	"github.com/lk2023060901/model-catalog/internal/web"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type HTTPServer struct {
	server *http.Server
	logger *logger.Logger
}

func NewHTTPServer(
	config *conf.Config,
	log *logger.Logger,
	redisClient *redis.Client,
	authService *authservice.AuthService,
	modelService *catalogservice.ModelService,
	requireSession gin.HandlerFunc,
) (*HTTPServer, error) {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(logger.Recovery(log))
	router.Use(logger.AccessLog(log, logger.AccessLogOptions{
		SkipPaths:        []string{"/health"},
		SkipPathPrefixes: []string{"/static/"},
	}))
	router.Use(middleware.CORS())

	if err := web.Install(router); err != nil {
		return nil, err
	}

	router.GET("/health", healthHandler(redisClient))

	pageLimiters, apiLimiters := newLimiters(config, redisClient, log)

	// Pages
	authService.RegisterPages(router, pageLimiters)
	modelService.RegisterPages(router, requireSession)

	// API routes
	bearer := middleware.BearerAuth(log)
	api := router.Group("/api/v1")
	authService.RegisterRoutes(api, bearer, apiLimiters)
	modelService.RegisterRoutes(api, bearer)

	return &HTTPServer{
		server: &http.Server{
			Addr:              config.Server.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: log,
	}, nil
}

// healthHandler 配置了 Redis 时一并检查其连通性，不可达返回 503
func healthHandler(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "ok", http.StatusOK
		body := gin.H{"time": time.Now().Format(time.RFC3339)}
		if redisClient != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := redisClient.Ping(ctx); err != nil {
				status, code = "degraded", http.StatusServiceUnavailable
				body["redis"] = "unreachable"
			} else {
				body["redis"] = "ok"
			}
		}
		body["status"] = status
		c.JSON(code, body)
	}
}

// newLimiters 启用限流时为页面与 API 创建登录/注册限流器，两者共用同一计数
func newLimiters(config *conf.Config, redisClient *redis.Client, log *logger.Logger) (pages, api authservice.Limiters) {
	rl := config.RateLimit
	if !rl.Enabled || redisClient == nil {
		return
	}

	pages = authservice.Limiters{
		Login:    middleware.LoginRateLimiter(redisClient, rl.LoginMax, rl.LoginWindow, authservice.RateLimited(middleware.LoginPath), log),
		Register: middleware.RegisterRateLimiter(redisClient, rl.RegisterMax, rl.RegisterWindow, authservice.RateLimited(authservice.RegisterPath), log),
	}
	api = authservice.Limiters{
		Login:    middleware.LoginRateLimiter(redisClient, rl.LoginMax, rl.LoginWindow, nil, log),
		Register: middleware.RegisterRateLimiter(redisClient, rl.RegisterMax, rl.RegisterWindow, nil, log),
	}
	log.Info("rate limiting enabled",
		zap.Int("login_max", rl.LoginMax),
		zap.Int("register_max", rl.RegisterMax),
	)
	return
}

// Handler 返回路由，供测试直接调用
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// Run 监听直到 ctx 取消，然后在 shutdownTimeout 内优雅关闭
func (s *HTTPServer) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(s.Start)
	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Stop(stopCtx)
	})
	return g.Wait()
}
