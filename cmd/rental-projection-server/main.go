package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/rental-projection/internal/cache"
	"github.com/iwvelando/rental-projection/internal/logging"
	"github.com/iwvelando/rental-projection/internal/projection"
	"github.com/iwvelando/rental-projection/internal/scheduler"
	"github.com/iwvelando/rental-projection/internal/server"
	"github.com/iwvelando/rental-projection/internal/store"
	"github.com/iwvelando/rental-projection/pkg/constants"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// A missing .env file is not an error
	_ = godotenv.Load()

	configLocation := flag.String("config", envOr(constants.EnvPrefix+"_SERVER_CONFIG", constants.DefaultServerConfigFile), "path to server configuration file")
	address := flag.String("address", os.Getenv(constants.EnvPrefix+"_ADDRESS"), "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Address = *address
	}
	if redisAddress := os.Getenv(constants.EnvPrefix + "_REDIS_ADDRESS"); redisAddress != "" {
		cfg.RedisAddress = redisAddress
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	policy, err := cfg.EnginePolicy()
	if err != nil {
		logger.Fatal("invalid engine policy",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	engine, err := projection.NewEngine(logger, policy)
	if err != nil {
		logger.Fatal("failed to create projection engine",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	var projectionCache projection.Cache
	if cfg.RedisAddress != "" {
		redisCache := cache.NewRedis(logger, cfg.RedisAddress, cfg.CacheDuration())
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			logger.Warn("redis is unreachable, requests will compute without cache hits",
				zap.String("op", "main"),
				zap.String("address", cfg.RedisAddress),
				zap.Error(err),
			)
		}
		cancel()
		defer func() {
			_ = redisCache.Close()
		}()
		projectionCache = redisCache
	} else {
		projectionCache = cache.NewMemory(cfg.CacheDuration(), 2*cfg.CacheDuration())
	}
	cachedEngine := projection.NewCachedEngine(logger, engine, projectionCache)

	st, err := store.Open(cfg.DatabasePath, logger)
	if err != nil {
		logger.Fatal("failed to open database",
			zap.String("op", "main"),
			zap.String("path", cfg.DatabasePath),
			zap.Error(err),
		)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close database",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	refresher, err := scheduler.New(logger, cfg.RefreshSchedule, engine, st)
	if err != nil {
		logger.Fatal("failed to create scheduler",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	refresher.Start()
	defer refresher.Stop()

	handler := server.NewHandler(logger, cachedEngine, st, server.Options{
		MaxBodySize: cfg.BodySizeBytes(),
		RateLimit:   cfg.RateLimit,
		Version:     version,
	})
	httpServer := &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
		)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
		logger.Info("server stopped gracefully",
			zap.String("op", "main"),
		)
	}
}
