package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"marketplace-notify/internal/common/config"
	"marketplace-notify/internal/common/database"
	"marketplace-notify/internal/common/logger"
	"marketplace-notify/internal/common/observability"
	"marketplace-notify/internal/directory"
	"marketplace-notify/internal/dispatch"
	"marketplace-notify/internal/mailbox"
	"marketplace-notify/internal/sequencer"
	"marketplace-notify/internal/server"
	"marketplace-notify/internal/store"
	"marketplace-notify/internal/transport"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting notification dispatcher...",
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("notification-dispatcher")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	if _, err := pg.DB.ExecContext(ctx, store.Schema); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Transport sink ---
	var sink transport.Sink = transport.Noop{}
	if cfg.Transport.SNS.Enabled {
		snsSink, err := transport.NewSNSSink(ctx, cfg.Transport.SNS.Region, cfg.Transport.SNS.TopicARN)
		if err != nil {
			zapLog.Fatal("sns sink init failed", zap.Error(err))
		}
		sink = snsSink
		zapLog.Info("SNS transport sink enabled", zap.String("topic", cfg.Transport.SNS.TopicARN))
	}

	// --- Wire the dispatch core ---
	recordStore := store.NewPostgres(pg.DB)
	countCache := mailbox.NewCountCache(rdb.Client, cfg.Notifications.UnreadCacheTTL)
	dir := directory.NewPostgres(pg.DB)

	engine := dispatch.New(recordStore, sink, countCache, log)
	mb := mailbox.New(recordStore, countCache, log)
	seq := sequencer.New(engine, dir, cfg.Notifications.ReviewReminderDelay, log)

	srv := server.New(engine, mb, seq, nil, obs, log, cfg.Server.Port)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	// --- Graceful shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			zapLog.Error("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http shutdown failed", zap.Error(err))
	}
	seq.Stop()
	engine.WaitForPushes()

	zapLog.Info("dispatcher stopped")
}
