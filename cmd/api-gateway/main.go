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
	"go.uber.org/zap"

	_ "github.com/noah-isme/classroom-scheduler/api/swagger"
	"github.com/noah-isme/classroom-scheduler/internal/handler"
	"github.com/noah-isme/classroom-scheduler/internal/repository"
	"github.com/noah-isme/classroom-scheduler/internal/scheduling"
	"github.com/noah-isme/classroom-scheduler/internal/service"
	"github.com/noah-isme/classroom-scheduler/pkg/cache"
	"github.com/noah-isme/classroom-scheduler/pkg/config"
	"github.com/noah-isme/classroom-scheduler/pkg/database"
	"github.com/noah-isme/classroom-scheduler/pkg/logger"
)

// @title Classroom Scheduler API
// @version 1.0.0
// @description Weekly classroom timetables: conflict-checked sessions, occupancy tiers and calendar grids.
// @BasePath /api/v1
// @schemes http
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	checks := map[string]handler.Pinger{"database": db}
	redisClient, err := cache.NewRedis(cfg.Redis)
	switch {
	case err != nil:
		logr.Warn("redis unavailable, using in-memory calendar cache", zap.Error(err))
		cacheRepo = repository.NewMemoryCacheRepository(cache.NewMemory(cfg.Calendar.CacheTTL))
	case redisClient == nil:
		cacheRepo = repository.NewMemoryCacheRepository(cache.NewMemory(cfg.Calendar.CacheTTL))
	default:
		redisRepo := repository.NewCacheRepository(redisClient, logr)
		defer redisRepo.Close()
		cacheRepo = redisRepo
		checks["redis"] = handler.PingFunc(redisRepo.Ping)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Calendar.CacheTTL, logr, cfg.Calendar.CacheEnabled)

	entryRepo := repository.NewScheduleEntryRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	validate := validator.New()
	authSvc := service.NewAuthService(logr, service.AuthConfig{AccessTokenSecret: cfg.JWT.Secret, Leeway: 30 * time.Second})
	entrySvc := service.NewScheduleEntryService(entryRepo, db, cacheSvc, metrics, validate, logr, service.ScheduleEntryConfig{LockWrites: cfg.Scheduling.LockWrites})
	calendarSvc := service.NewCalendarService(entryRepo, roomRepo, enrollmentRepo, cacheSvc, metrics, logr, service.CalendarConfig{
		Window: scheduling.Window{
			StartHour:        cfg.Calendar.StartHour,
			EndHour:          cfg.Calendar.EndHour,
			MinHeightPercent: cfg.Calendar.MinHeightPercent,
			Clip:             cfg.Calendar.ClipToWindow,
		},
		CacheTTL: cfg.Calendar.CacheTTL,
	})
	occupancySvc := service.NewOccupancyService(roomRepo, enrollmentRepo, logr)
	exportSvc := service.NewExportService(calendarSvc, nil, nil, logr)

	router := newRouter(routerDeps{
		cfg:       cfg,
		logger:    logr,
		auth:      authSvc,
		metrics:   metrics,
		entries:   handler.NewScheduleEntryHandler(entrySvc),
		calendar:  handler.NewCalendarHandler(calendarSvc, exportSvc),
		occupancy: handler.NewOccupancyHandler(occupancySvc),
		ops:       handler.NewMetricsHandler(metrics, checks),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logr.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
