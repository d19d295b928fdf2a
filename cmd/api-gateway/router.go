package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-scheduler/internal/handler"
	"github.com/noah-isme/classroom-scheduler/internal/middleware"
	"github.com/noah-isme/classroom-scheduler/internal/service"
	"github.com/noah-isme/classroom-scheduler/pkg/config"
	"github.com/noah-isme/classroom-scheduler/pkg/logger"
	corsmiddleware "github.com/noah-isme/classroom-scheduler/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/classroom-scheduler/pkg/middleware/requestid"
)

type routerDeps struct {
	cfg       *config.Config
	logger    *zap.Logger
	auth      middleware.TokenValidator
	metrics   *service.MetricsService
	entries   *handler.ScheduleEntryHandler
	calendar  *handler.CalendarHandler
	occupancy *handler.OccupancyHandler
	ops       *handler.MetricsHandler
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(d.logger, "/health", "/metrics"))
	r.Use(corsmiddleware.New(d.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(d.metrics))

	r.GET("/health", d.ops.Health)
	r.GET("/ready", d.ops.Ready)
	r.GET("/metrics", d.ops.Prometheus)

	if d.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(d.cfg.APIPrefix)
	api.Use(middleware.RateLimit(d.cfg.RateLimit.RPS, d.cfg.RateLimit.Burst))
	api.Use(middleware.JWT(d.auth))
	api.Use(middleware.WithResponseMeta())

	api.GET("/metrics/summary", middleware.RequireScheduleWriter(), d.ops.Summary)

	entries := api.Group("/schedule-entries")
	entries.GET("", d.entries.List)
	entries.GET("/:id", d.entries.Get)
	entries.POST("/conflicts", d.entries.CheckConflicts)
	entries.POST("", middleware.RequireScheduleWriter(), d.entries.Create)
	entries.PUT("/:id", middleware.RequireScheduleWriter(), d.entries.Update)
	entries.DELETE("/:id", middleware.RequireScheduleWriter(), d.entries.Delete)

	calendar := api.Group("/calendar")
	calendar.GET("/day", d.calendar.Day)
	calendar.GET("/week", d.calendar.Week)
	calendar.GET("/grid", d.calendar.Grid)
	calendar.GET("/export", d.calendar.Export)

	api.GET("/rooms/:id/occupancy", d.occupancy.Room)
	api.POST("/occupancy/classify", d.occupancy.Classify)

	return r
}
