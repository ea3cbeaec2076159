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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/timetable-api/api/swagger"
	"github.com/noah-isme/timetable-api/internal/csvio"
	"github.com/noah-isme/timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/cache"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/database"
	"github.com/noah-isme/timetable-api/pkg/jobs"
	"github.com/noah-isme/timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/requestid"
	"github.com/noah-isme/timetable-api/pkg/storage"
)

// @title Timetable API
// @version 1.0.0
// @description University timetable registry: professors, classrooms, courses and conflict-free lessons.
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	validate := validator.New()
	if err := service.RegisterTimetableValidations(validate); err != nil {
		logr.Fatal("failed to register validations", zap.Error(err))
	}
	metricsSvc := service.NewMetricsService()

	timetableSvc := service.NewTimetableService(repository.NewScheduleRepository(), validate, metricsSvc, logr)
	catalog, err := loadCatalog(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to load catalog", zap.String("source", cfg.Catalog.Source), zap.Error(err))
	}
	timetableSvc.Seed(ctx, catalog)

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, report cache disabled", zap.Error(err))
		} else {
			redisRepo := repository.NewCacheRepository(client, "timetable", logr)
			defer redisRepo.Close() //nolint:errcheck
			cacheRepo = redisRepo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo != nil)
	analyticsSvc := service.NewAnalyticsService(timetableSvc, cacheSvc, logr)
	timetableSvc.OnChange(analyticsSvc.InvalidateReports)

	exportHandler := handler.NewExportHandler(nil)
	if cfg.Exports.Enabled {
		exportJobs, queue, err := buildExports(ctx, cfg, timetableSvc, validate, metricsSvc, logr)
		if err != nil {
			logr.Fatal("failed to init exports", zap.Error(err))
		}
		defer queue.Stop()
		exportHandler = handler.NewExportHandler(exportJobs)
	}

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics"))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.GET("/metrics/summary", metricsHandler.Summary)

	professors := api.Group("/professors")
	professors.GET("", timetableHandler.ListProfessors)
	professors.POST("", timetableHandler.CreateProfessor)
	professors.GET("/:id/schedule", timetableHandler.ProfessorSchedule)

	classrooms := api.Group("/classrooms")
	classrooms.GET("", timetableHandler.ListClassrooms)
	classrooms.POST("", timetableHandler.CreateClassroom)
	classrooms.GET("/available", analyticsHandler.AvailableClassrooms)
	classrooms.GET("/:number/utilization", analyticsHandler.Utilization)

	courses := api.Group("/courses")
	courses.GET("", timetableHandler.ListCourses)
	courses.POST("", timetableHandler.CreateCourse)
	courses.PATCH("/:id/lessons/classroom", timetableHandler.ReassignCourseClassroom)
	courses.DELETE("/:id/lessons", timetableHandler.CancelCourseLessons)

	lessons := api.Group("/lessons")
	lessons.GET("", timetableHandler.ListLessons)
	lessons.POST("", timetableHandler.CreateLesson)
	lessons.POST("/bulk", timetableHandler.BulkCreateLessons)
	lessons.POST("/validate", timetableHandler.ValidateLesson)
	lessons.GET("/:id", timetableHandler.GetLesson)
	lessons.PATCH("/:id/classroom", timetableHandler.ReassignLessonClassroom)
	lessons.DELETE("/:id", timetableHandler.DeleteLesson)

	api.GET("/reports/popular-course-type", analyticsHandler.PopularCourseType)

	exports := api.Group("/exports")
	exports.POST("", exportHandler.Create)
	exports.GET("/download", exportHandler.Download)
	exports.GET("/:id", exportHandler.Status)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logr.Info("shutting down")
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logr.Warn("graceful shutdown failed", zap.Error(err))
		}
	}()

	logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func loadCatalog(ctx context.Context, cfg *config.Config, logr *zap.Logger) (*models.Catalog, error) {
	switch cfg.Catalog.Source {
	case config.CatalogSourceCSV:
		return csvio.NewLoader(cfg.Catalog.CSVDir, cfg.Catalog.CSVDelimiter).Load()
	case config.CatalogSourcePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		defer db.Close() //nolint:errcheck
		return repository.NewCatalogRepository(db).Load(ctx)
	case "", config.CatalogSourceNone:
		logr.Info("starting with an empty catalog")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}
}

func buildExports(ctx context.Context, cfg *config.Config, timetable *service.TimetableService, validate *validator.Validate, metrics *service.MetricsService, logr *zap.Logger) (*service.ExportJobService, *jobs.Queue, error) {
	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exporter := service.NewExportService(timetable, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, nil, nil)

	repo := repository.NewExportJobRepository()
	worker := service.NewExportWorker(repo, exporter, metrics, cfg.Exports.WorkerRetries, logr)
	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	queue.Start(ctx)

	svc := service.NewExportJobService(repo, queue, exporter, validate, logr, service.ExportJobServiceConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})
	svc.StartCleanup(ctx)
	return svc, queue, nil
}
