package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	authbiz "github.com/lk2023060901/model-catalog/internal/auth/biz"
	"github.com/lk2023060901/model-catalog/internal/auth/middleware"
	authservice "github.com/lk2023060901/model-catalog/internal/auth/service"
	catalogbiz "github.com/lk2023060901/model-catalog/internal/catalog/biz"
	catalogdata "github.com/lk2023060901/model-catalog/internal/catalog/data"
	catalogservice "github.com/lk2023060901/model-catalog/internal/catalog/service"
	"github.com/lk2023060901/model-catalog/internal/conf"
	"github.com/lk2023060901/model-catalog/internal/data"
	"github.com/lk2023060901/model-catalog/internal/pkg/logger"
	"github.com/lk2023060901/model-catalog/internal/server"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "configs/config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := config.Validate(); err != nil {
		panic("invalid config: " + err.Error())
	}

	log, err := logger.New(&config.Log)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	log.Info("config loaded successfully", zap.String("path", *configFile))

	// Initialize data layer
	d, cleanup, err := data.NewData(config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// nil 客户端表示未配置，认证用例据此返回 ErrAuthNotConfigured
	var authClient authbiz.AuthClient
	if d.Configured() {
		authClient = d.Supabase
	}

	// Initialize use cases
	authUseCase := authbiz.NewAuthUseCase(authClient, d.Sessions, log)
	modelUseCase := catalogbiz.NewModelUseCase(catalogdata.NewModelRepo(d.Supabase), log)

	// Initialize services
	cookie := &middleware.SessionCookie{
		Name:   config.Session.CookieName,
		Secure: config.Server.CookieSecure,
		MaxAge: config.Session.TTL,
	}
	authService := authservice.NewAuthService(authUseCase, cookie, log)
	modelService := catalogservice.NewModelService(modelUseCase, authUseCase, cookie, log)

	httpServer, err := server.NewHTTPServer(
		config,
		log,
		d.RedisClient,
		authService,
		modelService,
		middleware.RequireSession(authUseCase, cookie, log),
	)
	if err != nil {
		log.Fatal("failed to create HTTP server", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := httpServer.Run(ctx, 5*time.Second); err != nil {
		log.Error("HTTP server stopped with error", zap.Error(err))
	}
	log.Info("server exited")
}
