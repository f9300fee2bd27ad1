package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dicetray/dicetray/internal/api"
	"github.com/dicetray/dicetray/internal/factory"
	"github.com/dicetray/dicetray/internal/services/auth"
	redisstorage "github.com/dicetray/dicetray/internal/storage/redis"
)

func main() {
	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	cfg := factory.Config{
		Pepper: os.Getenv("DICETRAY_PEPPER"),
		AuthConfig: auth.Config{
			InvitationCode: os.Getenv("DICETRAY_INVITATION_CODE"),
		},
		Logger:      logger,
		StorageType: os.Getenv("STORAGE_TYPE"),
		SqlitePath:  os.Getenv("SQLITE_PATH"),
	}

	if cfg.Pepper == "" {
		logger.Error("DICETRAY_PEPPER must be set")
		os.Exit(1)
	}
	if cfg.AuthConfig.InvitationCode == "" {
		logger.Warn("DICETRAY_INVITATION_CODE not set; signup is disabled")
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create API router
	router := api.NewRouter(api.RouterConfig{
		Logger:           logger,
		AuthService:      app.AuthService,
		GameController:   app.GameController,
		LedgerController: app.LedgerController,
		SecureCookies:    os.Getenv("DICETRAY_PRODUCTION") != "",
	})

	// Create server
	serverConfig := api.DefaultServerConfig()
	server := api.NewServer(router, serverConfig, logger)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}
