package main

import (
	"context"
	"log"
	"time"

	"memora/config"
	"memora/internal/commands"
	"memora/internal/handler"
	"memora/internal/metrics"
	"memora/internal/redis"
	"memora/internal/server"
	"memora/internal/services"
	"memora/pkg/database"
	"memora/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	appLogger := logger.New(cfg.AppMode)
	logger.SetGlobalLogger(appLogger)
	defer appLogger.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.RunFullMigration(db, "migrations"); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database handle: %v", err)
	}
	metrics.Register(sqlDB)

	var (
		cache   services.TreeCache
		limiter *redis.RateLimiter
	)
	if cfg.RedisEnabled {
		redis.Initialize(redis.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		client := redis.GetClient()
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err := redis.Ping(ctx, client)
		cancel()
		if err != nil {
			appLogger.Logger.Warn("redis unavailable, continuing without cache and rate limiting", zap.Error(err))
		} else {
			cache = redis.NewThreadCache(client, cfg.ThreadCacheTTL, appLogger)
			limiter = redis.NewRateLimiter(client, redis.RateLimitConfig{
				RequestLimit:  cfg.RateLimitRequests,
				RequestWindow: cfg.RateLimitWindow,
				WriteLimit:    cfg.RateLimitWrites,
				WriteWindow:   cfg.RateLimitWriteWindow,
			})
		}
		defer client.Close()
	}

	opts := services.Options{
		Clock:   services.SystemClock(),
		Timeout: cfg.DBTimeout,
		Logger:  appLogger,
	}
	bus := commands.NewBus(commands.RequireActor())
	threads := services.NewThreadService(db, cache, bus, opts)
	polls := services.NewPollService(db, bus, opts)
	prompts := services.NewPromptService(db, threads, polls, bus, opts)
	communities := services.NewCommunityService(db, prompts, bus, opts)
	reports := services.NewReportService(db, bus, opts)

	srv := server.New(cfg, appLogger)
	srv.SetupRoutes(&server.Handlers{
		Prompts:     handler.NewPromptHandler(prompts, polls),
		Responses:   handler.NewResponseHandler(threads),
		Communities: handler.NewCommunityHandler(communities),
		Reports:     handler.NewReportHandler(reports),
		Health:      handler.NewHealthHandler(db),
	}, services.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience), limiter)

	if err := srv.Start(); err != nil {
		appLogger.Errorf("server stopped with error: %v", err)
	}
}
