// Package main runs the background worker that sends queued invite emails.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hezo-be/webinar-backend/config"
	"github.com/hezo-be/webinar-backend/internal/emaillogs"
	"github.com/hezo-be/webinar-backend/internal/invites"
	"github.com/hezo-be/webinar-backend/internal/notify"
	"github.com/hezo-be/webinar-backend/internal/webinars"
	"github.com/hezo-be/webinar-backend/internal/worker"
	"github.com/hezo-be/webinar-backend/pkg/database"
	"github.com/hezo-be/webinar-backend/pkg/queue"
	"github.com/hezo-be/webinar-backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	sender := notify.NewSenderFromConfig(cfg.Email)
	if sender == nil {
		logger.Fatal("no email sender configured: set RESEND_API_KEY or SMTP_HOST")
	}
	// The dispatcher applies the per-email timeout.
	dispatcher := notify.NewDispatcher(sender, 1, cfg.Email.SendTimeout(), logger)

	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewInviteEmailProcessor(
		invites.NewRepository(pool),
		webinars.NewRepository(pool),
		dispatcher,
		emaillogs.NewRepository(pool),
		jobQueue,
		nil,
		cfg.Server.PublicBaseURL,
		logger,
	)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		processor.Run(workerCtx)
		close(done)
	}()
	logger.Info("worker started", zap.String("queue", queue.QueueEmails))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		logger.Warn("worker did not stop in time")
	}
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
