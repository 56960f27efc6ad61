package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quizbox/internal/adapter"
	"quizbox/internal/cache"
	"quizbox/internal/config"
	"quizbox/internal/database"
	"quizbox/internal/logger"
	"quizbox/internal/repository"
	"quizbox/internal/router"
	"quizbox/internal/service"
	"quizbox/internal/session"
	"quizbox/internal/validation"
	"quizbox/web"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Get().Error("Server stopped with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Get().Info("Server exited gracefully")
}

func run(cfg *config.Config) error {
	appLogger := logger.Get()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()
	appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))

	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	sessionStore := session.NewStore(cfg.Session, adapter.NewRedisSessionStorage(redisClient))

	quizRepository := repository.NewQuizDatabaseAdapter(db)
	quizService := service.NewQuizService(quizRepository, validation.NewValidator())
	randomPlayService := service.NewRandomPlayService(
		quizRepository,
		service.NewRandomPlayStore(cacheAdapter, cfg.Session.Expiration),
	)

	app := router.New(cfg.Server, router.Dependencies{
		QuizService:       quizService,
		RandomPlayService: randomPlayService,
		Cache:             cacheAdapter,
		SessionStore:      sessionStore,
		Views:             web.NewEngine(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + strconv.Itoa(cfg.Server.Port)
		appLogger.Info("Starting server", zap.String("addr", addr), zap.String("env", cfg.Logger.Env), zap.String("db_driver", cfg.DB.Driver))
		if err := app.Listen(addr); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
