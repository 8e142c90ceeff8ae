package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/deep-platform/deep-api/api/swagger"
	"github.com/deep-platform/deep-api/internal/handler"
	"github.com/deep-platform/deep-api/internal/repository"
	"github.com/deep-platform/deep-api/internal/service"
	"github.com/deep-platform/deep-api/pkg/cache"
	"github.com/deep-platform/deep-api/pkg/config"
	"github.com/deep-platform/deep-api/pkg/database"
	"github.com/deep-platform/deep-api/pkg/jobs"
	"github.com/deep-platform/deep-api/pkg/logger"
	"github.com/deep-platform/deep-api/pkg/storage"
)

// @title Deep API
// @version 1.0.0
// @description Mentorship sessions and the personalized community feed
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, booking lock disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	store, err := storage.NewLocalStore(cfg.Statements.StorageDir)
	if err != nil {
		return err
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	sessionRepo := repository.NewSessionRepository(db)
	mentorRepo := repository.NewMentorRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	postRepo := repository.NewPostRepository(db)
	engagementRepo := repository.NewEngagementRepository(db)
	interestRepo := repository.NewInterestRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	audit := service.NewAuditRecorder(auditRepo, metrics, logr)
	auditQueue := jobs.New("audit", audit.Handle, jobs.Options{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
		MaxRetries: cfg.Audit.Retries,
		RetryDelay: cfg.Audit.RetryDelay,
		Logger:     logr,
		OnDrop:     audit.Dropped,
	})
	auditQueue.Start(context.WithoutCancel(ctx))
	defer auditQueue.Stop()
	audit.Attach(auditQueue)

	identity := service.NewIdentityService(service.IdentityConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.Expiration,
	})

	bookings := service.NewBookingService(sessionRepo, mentorRepo, profileRepo, validate, logr,
		service.BookingConfig{
			DefaultTimezone: cfg.Booking.DefaultTimezone,
			MaxDuration:     cfg.Booking.MaxDuration,
			DefaultPageSize: cfg.Feed.DefaultPageSize,
			MaxPageSize:     cfg.Feed.MaxPageSize,
		},
		service.WithBookingLocker(cache.NewLocker(redisClient, "deep:booking:", cfg.Booking.LockTTL, logr)),
		service.WithBookingAudit(audit),
		service.WithBookingMetrics(metrics),
	)

	feed := service.NewFeedService(postRepo, engagementRepo, interestRepo, profileRepo, validate, logr,
		service.FeedConfig{
			DefaultPageSize:  cfg.Feed.DefaultPageSize,
			MaxPageSize:      cfg.Feed.MaxPageSize,
			EngagementWindow: cfg.Feed.EngagementWindow,
			HistoryLimit:     cfg.Feed.HistoryLimit,
			SimilarLimit:     cfg.Feed.SimilarLimit,
		},
		service.WithFeedAudit(audit),
		service.WithFeedMetrics(metrics),
	)

	statements := service.NewStatementService(sessionRepo, mentorRepo, store,
		storage.NewSigner(cfg.Statements.SignedURLSecret, cfg.Statements.SignedURLTTL),
		audit, validate, logr,
		service.StatementConfig{APIPrefix: cfg.APIPrefix, Retention: cfg.Statements.SignedURLTTL},
	)
	go sweepStatements(ctx, statements, cfg.Statements.CleanupInterval, logr)

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = pingRedis(redisClient)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(cfg, logr, routeDeps{
		identity:   identity,
		metrics:    metrics,
		sessions:   handler.NewSessionHandler(bookings),
		feed:       handler.NewFeedHandler(feed),
		statements: handler.NewStatementHandler(statements),
		ops:        handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func sweepStatements(ctx context.Context, statements *service.StatementService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := statements.Cleanup(); err != nil {
				logr.Warn("statement cleanup failed", zap.Error(err))
			}
		}
	}
}

func pingRedis(client *redis.Client) handler.PingFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
