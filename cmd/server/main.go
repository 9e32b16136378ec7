package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/app"
	"github.com/Freeeeeet/lesson_scheduler/internal/config"
	"github.com/Freeeeeet/lesson_scheduler/internal/controller"
	"github.com/Freeeeeet/lesson_scheduler/internal/httpapi"
	"github.com/Freeeeeet/lesson_scheduler/internal/journal"
	"github.com/Freeeeeet/lesson_scheduler/internal/metrics"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting lesson scheduler",
		zap.String("environment", cfg.Environment),
		zap.Bool("env_file", cfg.EnvFileLoaded),
		zap.Bool("database", cfg.HasDatabase()),
		zap.Bool("telegram", cfg.HasTelegram()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Service stopped with error", zap.Error(err))
	}
	logger.Info("Service stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	metrics.Register()

	changes := journal.New()
	var recorder model.Recorder = model.NopRecorder{}
	if cfg.HasDatabase() {
		recorder = changes
	}
	engine := service.NewBookingService(recorder, model.SystemClock, logger)

	if cfg.HasDatabase() {
		pool, err := pgxpool.New(ctx, cfg.DBDSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return err
		}

		migrator, err := app.NewMigrator(pool, cfg.MigrationsDir, logger)
		if err != nil {
			return err
		}
		err = migrator.Run(ctx)
		migrator.Close()
		if err != nil {
			return err
		}

		store := repository.NewStore(pool)
		snapshot, err := store.Load(ctx)
		if err != nil {
			return err
		}
		engine.Restore(snapshot)

		scheduler := app.NewScheduler(changes, store, cfg.FlushInterval, logger)
		scheduler.Start(context.WithoutCancel(ctx))
		// Финальный сброс журнала должен пройти до закрытия пула
		defer scheduler.Stop()
	} else {
		logger.Warn("DB_DSN is not set, state is kept in memory only")
	}

	if cfg.HasTelegram() {
		b, err := bot.New(cfg.TelegramToken)
		if err != nil {
			return err
		}

		botController := controller.NewBotController(b, engine, model.SystemClock, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("Bot commands menu is not set", zap.Error(err))
		}
		go botController.Start(ctx)
	}

	server := httpapi.NewServer(engine, logger, httpapi.WithRateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst))
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(cfg.HTTPAddr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
