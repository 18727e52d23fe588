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
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/tutor-desk-api/api/swagger"
	"github.com/noah-isme/tutor-desk-api/internal/handler"
	internalmiddleware "github.com/noah-isme/tutor-desk-api/internal/middleware"
	"github.com/noah-isme/tutor-desk-api/internal/repository"
	"github.com/noah-isme/tutor-desk-api/internal/service"
	"github.com/noah-isme/tutor-desk-api/pkg/cache"
	"github.com/noah-isme/tutor-desk-api/pkg/config"
	"github.com/noah-isme/tutor-desk-api/pkg/database"
	"github.com/noah-isme/tutor-desk-api/pkg/jobs"
	"github.com/noah-isme/tutor-desk-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/tutor-desk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/tutor-desk-api/pkg/middleware/requestid"
	"github.com/noah-isme/tutor-desk-api/pkg/validation"
)

// @title Tutor Desk API
// @version 1.0.0
// @description Lesson scheduling, payment tracking and notes for independent tutors
// @BasePath /api
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.AutoMigrate {
		migrator, err := database.NewMigrator(db, logr)
		if err != nil {
			logr.Fatal("failed to init migrator", zap.Error(err))
		}
		if err := migrator.Up(ctx); err != nil {
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	metrics := service.NewMetricsService()

	var (
		redisClient *redis.Client
		cacheRepo   service.CacheRepository
	)
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, serving uncached", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cacheRepo != nil)

	validate := validation.New()
	loc := cfg.Schedule.Location()

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	parentRepo := repository.NewParentRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	recurringRepo := repository.NewRecurringLessonRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	authSvc := service.NewAuthService(userRepo, sessionRepo, validate, logr, service.AuthConfig{
		Secret: cfg.Session.Secret,
		TTL:    cfg.Session.TTL,
		Issuer: cfg.Session.Issuer,
	})
	studentSvc := service.NewStudentService(studentRepo, parentRepo, cacheSvc, validate, logr)
	parentSvc := service.NewParentService(parentRepo, cacheSvc, validate, logr)
	lessonSvc := service.NewLessonService(lessonRepo, studentRepo, cacheSvc, metrics, validate, logr, service.ScheduleOptions{
		Location:     loc,
		LookbackDays: cfg.Schedule.AgendaLookbackDays,
	})
	recurringSvc := service.NewRecurringLessonService(recurringRepo, lessonRepo, cacheSvc, metrics, validate, logr, loc, cfg.Schedule.MaxOccurrences)
	commentSvc := service.NewCommentService(commentRepo, lessonRepo, validate, logr)
	noteSvc := service.NewNoteService(noteRepo, studentRepo, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, lessonRepo, studentRepo, parentRepo, cacheSvc, metrics, validate, logr)
	exportSvc := service.NewExportService(lessonRepo, studentRepo, loc, logr)

	maintenance := jobs.NewQueue("maintenance", jobs.QueueConfig{Workers: 1, MaxRetries: 3, RetryDelay: 30 * time.Second, Logger: logr})
	maintenance.Handle(service.JobPruneSessions, service.NewSessionJanitor(sessionRepo, cfg.Session.PruneGrace, logr).Prune)
	maintenance.Start(ctx)
	defer maintenance.Stop()
	if cfg.Session.PruneInterval > 0 {
		if err := maintenance.Every(cfg.Session.PruneInterval, service.JobPruneSessions); err != nil {
			logr.Warn("session pruning disabled", zap.Error(err))
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metrics, cfg.APIPrefix))
	r.Use(internalmiddleware.WithResponseMeta())

	checks := map[string]handler.ReadinessCheck{"database": db.PingContext}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}
	metricsHandler := handler.NewMetricsHandler(metrics, checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Handlers{
		Auth:            handler.NewAuthHandler(authSvc),
		Students:        handler.NewStudentHandler(studentSvc),
		Parents:         handler.NewParentHandler(parentSvc),
		Lessons:         handler.NewLessonHandler(lessonSvc, exportSvc),
		RecurringLesson: handler.NewRecurringLessonHandler(recurringSvc),
		Comments:        handler.NewCommentHandler(commentSvc),
		Notes:           handler.NewNoteHandler(noteSvc),
		Payments:        handler.NewPaymentHandler(paymentSvc),
	}.Register(r.Group(cfg.APIPrefix), internalmiddleware.Session(authSvc))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
