package main

import (
	"context"
	"flag"
	"fmt" // For initial error printing before logger is up
	"os"
	"os/signal"
	"syscall"

	"ielts-prep/internal/adapter"
	"ielts-prep/internal/cache"
	"ielts-prep/internal/config"
	"ielts-prep/internal/database"
	"ielts-prep/internal/domain"
	"ielts-prep/internal/logger"
	"ielts-prep/internal/repository"
	"ielts-prep/internal/service"

	"go.uber.org/zap"
)

func main() {
	dir := flag.String("dir", "./seed", "directory holding *.json preset and test files")
	concurrency := flag.Int("concurrency", service.DefaultSeedConcurrency, "files processed in parallel")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		return
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		return
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Seeding starting up...", zap.String("dir", *dir))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewSQLXOracleDB(ctx, cfg.GetDSN())
	if err != nil {
		l.Fatal("Failed to connect to Oracle database", zap.Error(err))
	}
	defer db.Close()
	l.Info("Successfully connected to Oracle database.")

	// The preset list is cached by the API; invalidate it when Redis is configured.
	var cacheAdapter domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			l.Fatal("Failed to initialize Redis client", zap.Error(err))
		}
		defer redisClient.Close()
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
	} else {
		l.Warn("Redis cache is not configured. Preset list cache will not be invalidated.")
	}

	txManager := repository.NewTransactionManagerAdapter(db)
	seeder := service.NewSeedService(
		repository.NewTestRepository(db, txManager),
		service.NewCachedPresetRepository(repository.NewPresetRepository(db), cacheAdapter, cfg.Cache.PresetTTL),
		*concurrency,
	)

	report, err := seeder.SeedFiles(ctx, os.DirFS(*dir), "*.json")
	if err != nil {
		l.Fatal("Seeding failed", zap.Error(err))
	}
	if report.Failed > 0 {
		l.Warn("Some files could not be stored", zap.Int("failed", report.Failed))
	}
	l.Info("Seeding process finished.")
}
