package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"userkeeper/docs"
	"userkeeper/internal/auth"
	"userkeeper/internal/cache"
	"userkeeper/internal/config"
	"userkeeper/internal/db"
	"userkeeper/internal/handler"
	"userkeeper/internal/observability"
	"userkeeper/internal/repository"
	"userkeeper/internal/router"
	"userkeeper/internal/service"
)

// @title User Accounts API
// @version 1.0
// @description Create, read, update, soft-delete, filter and bulk-create user accounts.
// @host localhost:8080
// @BasePath /api
// @schemes http
func main() {
	cfg := config.Load()

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Fatal("database init", zap.Error(err))
	}

	if cfg.ResetDB {
		logger.Warn("RESET_DB=true detected, dropping users table")
	}
	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		logger.Warn("redis unavailable, user cache disabled until it recovers", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	hasher := auth.NewBcryptHasher(cfg.BcryptCost)
	userRepo := repository.NewUserRepository(gormDB)
	userService := service.NewUserService(userRepo, hasher, cacheClient, logger, service.WithCacheTTL(cfg.UserCacheTTL))
	userHandler := handler.NewUserHandler(userService, logger)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, logger, userHandler)

	if cfg.SwaggerHost != "" {
		docs.SetHost(cfg.SwaggerHost)
	} else {
		docs.SetHost("localhost:" + cfg.ServerPort)
	}
	logger.Info("swagger documentation available",
		zap.String("url", docs.SwaggerInfo.Schemes[0]+"://"+docs.SwaggerInfo.Host+"/swagger/index.html"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		logger.Info("server listening", zap.String("addr", addr), zap.Int("bcrypt_cost", hasher.Cost()))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server start", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", zap.Error(err))
	}
}
