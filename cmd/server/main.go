// Package main runs the webinar invite HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/hezo-be/webinar-backend/config"
	"github.com/hezo-be/webinar-backend/internal/analytics"
	"github.com/hezo-be/webinar-backend/internal/auth"
	"github.com/hezo-be/webinar-backend/internal/emaillogs"
	"github.com/hezo-be/webinar-backend/internal/invites"
	"github.com/hezo-be/webinar-backend/internal/metrics"
	"github.com/hezo-be/webinar-backend/internal/middleware"
	"github.com/hezo-be/webinar-backend/internal/notify"
	"github.com/hezo-be/webinar-backend/internal/viewer"
	"github.com/hezo-be/webinar-backend/internal/webinars"
	"github.com/hezo-be/webinar-backend/pkg/database"
	"github.com/hezo-be/webinar-backend/pkg/queue"
	"github.com/hezo-be/webinar-backend/pkg/redis"
	"github.com/hezo-be/webinar-backend/pkg/storage"
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

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Redis backs the viewer rate limit and the resend queue; both are optional.
	var limiter middleware.Limiter
	var emailQueue emaillogs.Enqueuer
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		if cfg.Viewer.RateLimitPerMinute > 0 {
			limiter = redis.NewLimiter(rdb.Client, cfg.Viewer.RateLimitPerMinute, time.Minute)
		}
		emailQueue = queue.NewQueue(rdb.Client, logger)
	} else {
		logger.Warn("REDIS_ADDR not set: viewer rate limiting and email resends disabled")
	}

	var thumbnails webinars.ThumbnailUploader
	if cfg.AWS.ThumbnailsBucket != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:           cfg.AWS.Region,
			AccessKeyID:      cfg.AWS.AccessKeyID,
			SecretAccessKey:  cfg.AWS.SecretAccessKey,
			ThumbnailsBucket: cfg.AWS.ThumbnailsBucket,
			PublicBaseURL:    cfg.AWS.PublicBaseURL,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			thumbnails = s3Client
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	secret := auth.NewSecret(cfg.Admin.Password)
	sessions := auth.NewSessionService(cfg.Admin.SessionSecret, cfg.Admin.SessionTTL())

	webinarRepo := webinars.NewRepository(pool)
	inviteRepo := invites.NewRepository(pool)
	emailLogRepo := emaillogs.NewRepository(pool)

	sender := notify.NewSenderFromConfig(cfg.Email)
	if sender == nil {
		logger.Warn("no email sender configured: invite emails will be reported as failed")
	} else {
		logger.Info("invite emails enabled", zap.Bool("resend", cfg.Email.APIKey != ""))
	}
	dispatcher := notify.NewDispatcher(sender, cfg.Email.Concurrency, cfg.Email.SendTimeout(), logger)
	inviteSvc := invites.NewService(inviteRepo, webinarRepo, dispatcher, emailLogRepo, m, cfg.Server.PublicBaseURL, cfg.Email.DispatchBudget(), logger)
	viewerSvc := viewer.NewService(inviteRepo, webinarRepo, m, logger)

	router := newRouter(routerDeps{
		corsOrigins: cfg.Server.CORSAllowedOrigins,
		secret:      secret,
		sessions:    sessions,
		limiter:     limiter,
		registry:    registry,
		logger:      logger,
		auth:        auth.NewHandler(secret, sessions, logger),
		analytics:   analytics.NewHandler(analytics.NewRepository(pool), webinarRepo, logger),
		webinars:    webinars.NewHandler(webinarRepo, thumbnails, logger),
		invites:     invites.NewHandler(inviteSvc, logger),
		emailLogs:   emaillogs.NewHandler(emailLogRepo, inviteRepo, emailQueue, logger),
		viewer:      viewer.NewHandler(viewerSvc, logger),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
