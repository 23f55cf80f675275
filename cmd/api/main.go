// @title IELTS Prep API
// @version 1.0
// @description Practice-test selection, generation and quota API for the IELTS prep app.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "ielts-prep/cmd/api/docs"
	"ielts-prep/internal/adapter"
	"ielts-prep/internal/adapter/testgen"
	"ielts-prep/internal/cache"
	"ielts-prep/internal/config"
	"ielts-prep/internal/database"
	"ielts-prep/internal/handler"
	"ielts-prep/internal/logger"
	"ielts-prep/internal/middleware"
	"ielts-prep/internal/repository"
	"ielts-prep/internal/service"
	"ielts-prep/internal/util"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	db, err := database.NewSQLXOracleDB(ctx, cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Successfully connected to Redis")

	generator, err := testgen.NewGenerator(ctx, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create test generator", zap.Error(err))
	}
	appLogger.Info("Test generator initialized",
		zap.String("provider", cfg.Generation.Provider),
		zap.String("model", generator.ModelID()))

	authService, err := service.NewAuthService(cfg.Auth)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}

	// Repositories
	txManager := repository.NewTransactionManagerAdapter(db)
	testRepository := repository.NewTestRepository(db, txManager)
	topicRepository := repository.NewTopicCompletionRepository(db, txManager)
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	presetRepository := service.NewCachedPresetRepository(repository.NewPresetRepository(db), cacheAdapter, cfg.Cache.PresetTTL)
	usageStore := adapter.NewRedisUsageStore(redisClient, cfg.Quota.RecordTTL)

	// Services
	rnd := util.NewTimeSeededRand()
	quotaService := service.NewQuotaService(usageStore, cfg.Quota.DailyTokenLimit)
	topicService := service.NewTopicCycleService(topicRepository)
	smartTestService := service.NewSmartTestService(testRepository, topicService, rnd, cfg.Selection)
	generationService := service.NewGenerationService(generator, presetRepository, quotaService, rnd, cfg.Generation)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.RegisterRoutes(app.Group("/api"), handler.Handlers{
		Health:     handler.NewHealthHandler(db, cacheAdapter),
		Topics:     handler.NewTopicHandler(topicService),
		Tests:      handler.NewTestHandler(smartTestService),
		Generation: handler.NewGenerationHandler(generationService),
		Quota:      handler.NewQuotaHandler(quotaService),
	}, middleware.Protected(authService))

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
