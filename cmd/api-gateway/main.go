package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/campusworks/timetable-api/api/swagger"
	"github.com/campusworks/timetable-api/internal/handler"
	"github.com/campusworks/timetable-api/internal/middleware"
	"github.com/campusworks/timetable-api/internal/repository"
	"github.com/campusworks/timetable-api/internal/service"
	"github.com/campusworks/timetable-api/pkg/cache"
	"github.com/campusworks/timetable-api/pkg/config"
	"github.com/campusworks/timetable-api/pkg/database"
	"github.com/campusworks/timetable-api/pkg/logger"
	corsmiddleware "github.com/campusworks/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusworks/timetable-api/pkg/middleware/requestid"
)

// @title Campusworks Timetable API
// @version 1.0.0
// @description Conflict-minimised weekly timetable optimization for students
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	var catalogRepo *repository.CourseCatalogRepository
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Warn("postgres unavailable, catalog lookups disabled", zap.Error(err))
	} else {
		defer db.Close() //nolint:errcheck
		catalogRepo = repository.NewCourseCatalogRepository(db)
	}

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, optimization caching disabled", zap.Error(err))
	} else {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Optimizer.CacheTTL, logr, true)
	}

	var catalogSvc *service.CatalogService
	var optimizerCatalog service.CatalogRepository
	if catalogRepo != nil {
		catalogSvc = service.NewCatalogService(catalogRepo, metricsSvc, logr)
		optimizerCatalog = catalogRepo
	}

	optimizerSvc := service.NewScheduleOptimizerService(
		optimizerCatalog,
		cacheSvc,
		metricsSvc,
		validate,
		logr,
		service.ScheduleOptimizerConfig{
			MaxCourses:      cfg.Optimizer.MaxCourses,
			MaxAlternatives: cfg.Optimizer.MaxAlternatives,
			CacheTTL:        cfg.Optimizer.CacheTTL,
		},
	)
	exportSvc := service.NewExportService(optimizerSvc, logr, cfg.Exports.Enabled)

	optimizerHandler := handler.NewScheduleOptimizerHandler(optimizerSvc, exportSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	if cfg.Auth.Enabled {
		api.Use(middleware.JWT(cfg.Auth.JWTSecret))
	} else {
		// tokens are not required, but authenticated callers still get
		// their claims attached (the optimize endpoint defaults studentId
		// from them)
		api.Use(middleware.OptionalJWT(cfg.Auth.JWTSecret))
	}

	if cfg.Optimizer.Enabled {
		api.POST("/timetable/optimize", optimizerHandler.Optimize)
		api.POST("/timetable/optimize/export", optimizerHandler.Export)
	}
	if catalogSvc != nil {
		api.GET("/catalog/courses", catalogHandler.List)
	}
	api.GET("/metrics/summary", metricsHandler.Summary)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
