package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/SnapyBara/snapybara-geo/internal/config"
	httpDelivery "github.com/SnapyBara/snapybara-geo/internal/delivery/http"
	"github.com/SnapyBara/snapybara-geo/internal/delivery/http/handler"
	"github.com/SnapyBara/snapybara-geo/internal/domain/repository"
	"github.com/SnapyBara/snapybara-geo/internal/infrastructure/nominatim"
	"github.com/SnapyBara/snapybara-geo/internal/infrastructure/overpass"
	"github.com/SnapyBara/snapybara-geo/internal/pkg/logger"
	"github.com/SnapyBara/snapybara-geo/internal/repository/cache"
	"github.com/SnapyBara/snapybara-geo/internal/usecase"
	"github.com/SnapyBara/snapybara-geo/internal/worker"
	"github.com/SnapyBara/snapybara-geo/internal/worker/warmer"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting SnapyBara Geo Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.Int("overpass_servers", len(cfg.Overpass.Servers)),
	)

	// 3. Connect to Redis. Сервис обязан работать и без Redis:
	// в этом случае кеш деградирует до внутрипроцессного хранилища.
	var cacheRepo repository.CacheRepository
	var redisClient *cache.Redis

	redisClient, err = cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Warn("Redis unavailable, falling back to in-memory cache", zap.Error(err))
		cacheRepo = cache.NewMemoryRepository()
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("Failed to close Redis connection", zap.Error(err))
			}
		}()
		log.Info("Redis connected")
		cacheRepo = cache.NewCacheRepository(redisClient)
	}

	store := cache.NewStore(cacheRepo, log)

	// 4. Initialize upstream clients
	monitor := overpass.NewMonitor()
	overpassRepo := overpass.NewClient(&cfg.Overpass, &cfg.Search, monitor, log)
	nominatimRepo := nominatim.NewClient(&cfg.Nominatim, log)

	log.Info("Upstream clients initialized")

	// 5. Initialize Use Cases
	searchUC := usecase.NewSearchUseCase(
		overpassRepo,
		nominatimRepo,
		store,
		&cfg.Cache,
		&cfg.Search,
		&cfg.Overpass,
		&cfg.Nominatim,
		log,
	)

	log.Info("Use cases initialized")

	// 6. Initialize HTTP Handlers
	searchHandler := handler.NewSearchHandler(searchUC, &cfg.Warmup, log)
	monitorHandler := handler.NewMonitorHandler(monitor, log)

	// 7. Initialize HTTP Server
	server := httpDelivery.NewServer(cfg, log, searchHandler, monitorHandler)

	log.Info("HTTP server initialized")

	// 8. Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := worker.NewWorkerManager(log)
	if cfg.Warmup.Enabled {
		manager.Register(warmer.NewWarmupWorker(searchUC, &cfg.Warmup, log))
	}

	if err := manager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// 9. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 10. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	cancel()

	if err := manager.Stop(); err != nil {
		log.Error("Workers shutdown error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
