package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/aptora/aptora-api/api/swagger"
	"github.com/aptora/aptora-api/internal/handler"
	"github.com/aptora/aptora-api/internal/middleware"
	"github.com/aptora/aptora-api/internal/repository"
	"github.com/aptora/aptora-api/internal/scheduler"
	"github.com/aptora/aptora-api/internal/service"
	"github.com/aptora/aptora-api/pkg/cache"
	"github.com/aptora/aptora-api/pkg/config"
	"github.com/aptora/aptora-api/pkg/database"
	"github.com/aptora/aptora-api/pkg/logger"
	corsmiddleware "github.com/aptora/aptora-api/pkg/middleware/cors"
	reqidmiddleware "github.com/aptora/aptora-api/pkg/middleware/requestid"
)

// @title Aptora API
// @version 0.1.0
// @description Study planner with schedule optimization engine
// @BasePath /api/v1
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	envCfg := scheduler.EnvConfig{
		MaxItems:        cfg.Scheduler.MaxItems,
		MaxSlots:        cfg.Scheduler.MaxSlots,
		MaxSessionHours: cfg.Scheduler.MaxSessionHours,
	}
	engine := scheduler.NewEngine(scheduler.EngineConfig{
		Options: scheduler.Options{
			MinSessionHours: cfg.Scheduler.MinSessionHours,
			MaxSessionHours: cfg.Scheduler.MaxSessionHours,
		},
		Env:        envCfg,
		PolicyPath: cfg.Scheduler.PolicyPath,
	}, logr)
	trainer := scheduler.NewCrossEntropyTrainer(cfg.Scheduler.PolicyPath, envCfg, logr)

	assignmentRepo := repository.NewAssignmentRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	sessionRepo := repository.NewStudySessionRepository(db)
	trainingRepo := repository.NewTrainingRunRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Scheduler.CacheTTL, logr, redisClient != nil)
	scheduleSvc := service.NewScheduleService(assignmentRepo, availabilityRepo, sessionRepo, engine, cacheSvc, metricsSvc, nil, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, cacheSvc, nil, logr)
	availabilitySvc := service.NewAvailabilityService(availabilityRepo, cacheSvc, nil, logr)
	exportSvc := service.NewExportService(scheduleSvc, cfg.Export.Title, logr, nil, nil)
	trainingSvc := service.NewTrainingService(trainingRepo, trainer, engine, metricsSvc, service.TrainingConfig{
		Enabled:       cfg.Training.Enabled,
		Workers:       cfg.Training.Workers,
		DefaultBudget: cfg.Training.DefaultBudget,
		ScenarioCount: cfg.Training.ScenarioCount,
	}, nil, logr)
	trainingSvc.Start(ctx)
	defer trainingSvc.Stop()

	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, exportSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	trainingHandler := handler.NewTrainingHandler(trainingSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.JWT.Secret))
	{
		api.POST("/schedules/generate", scheduleHandler.Generate)
		api.GET("/schedules/sessions", scheduleHandler.ListSessions)
		api.PATCH("/schedules/sessions/:id", scheduleHandler.UpdateSession)
		api.DELETE("/schedules/sessions/:id", scheduleHandler.DeleteSession)
		if cfg.Export.Enabled {
			api.GET("/schedules/export", scheduleHandler.Export)
		}

		api.GET("/assignments", assignmentHandler.List)
		api.POST("/assignments", assignmentHandler.Create)
		api.GET("/assignments/:id", assignmentHandler.Get)
		api.PUT("/assignments/:id", assignmentHandler.Update)
		api.POST("/assignments/:id/complete", assignmentHandler.Complete)
		api.DELETE("/assignments/:id", assignmentHandler.Delete)

		api.GET("/availability", availabilityHandler.List)
		api.POST("/availability", availabilityHandler.Create)
		api.PUT("/availability/:id", availabilityHandler.Update)
		api.DELETE("/availability/:id", availabilityHandler.Delete)

		api.POST("/training/run", trainingHandler.Run)
		api.GET("/training/runs/:id", trainingHandler.Status)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
