package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/onlineenrollmentdb/ctu-db.v1-sub000/api/swagger"
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/handler"
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/repository"
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/service"
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/cache"
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/config"
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/database"
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/events"
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/logger"
	corsmiddleware "github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/middleware/cors"
	metricsmiddleware "github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/middleware/metrics"
	reqidmiddleware "github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/middleware/requestid"
)

// @title Enrollment Eligibility & Workflow API
// @version 1.0.0
// @description Prerequisite resolution, eligibility classification and the enrollment workflow state machine.
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
	defer db.Close() //nolint:errcheck

	var statusStore service.StatusCacheStore
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close() //nolint:errcheck
		statusStore = repository.NewStatusCacheRepository(redisClient, logr)
		if cfg.Events.Enabled {
			publisher = events.NewRedisPublisher(redisClient, cfg.Events.Channel, logr)
		}
	} else {
		statusStore = service.NewMemoryStatusStore(nil)
	}

	metricsService := service.NewMetricsService()
	validate := validator.New()

	subjectRepo := repository.NewSubjectRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	clearanceRepo := repository.NewClearanceRepository(db)
	termRepo := repository.NewTermRepository(db)

	statusCache := service.NewStatusCache(statusStore, cfg.Enrollment.StatusCacheTTL, metricsService, logr)
	prereqService := service.NewPrerequisiteService(subjectRepo, cfg.Enrollment.YearStandingExclusive, logr)
	eligibilityService := service.NewEligibilityService(subjectRepo, recordRepo, enrollmentRepo, studentRepo, prereqService, validate, logr)
	subjectService := service.NewSubjectService(subjectRepo, logr)
	termService := service.NewTermService(termRepo, nil, logr)
	enrollmentService := service.NewEnrollmentService(
		enrollmentRepo, clearanceRepo, subjectRepo, termRepo, studentRepo,
		eligibilityService, statusCache, publisher, metricsService, validate, logr, nil,
	)

	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	eligibilityHandler := handler.NewEligibilityHandler(eligibilityService)
	subjectHandler := handler.NewSubjectHandler(subjectService)
	termHandler := handler.NewTermHandler(termService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(metricsmiddleware.New(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/subjects", subjectHandler.List)

		api.GET("/terms/current", termHandler.Current)
		api.GET("/terms/:term/window", termHandler.Window)

		api.POST("/eligibility/unit-load", eligibilityHandler.EvaluateUnitLoad)
		api.GET("/eligibility/:studentId", eligibilityHandler.Classify)

		api.PUT("/enrollments/clearance", enrollmentHandler.SetClearance)
		api.POST("/enrollments/submit", enrollmentHandler.Submit)
		api.POST("/enrollments/confirm", enrollmentHandler.Confirm)
		api.POST("/enrollments/revoke", enrollmentHandler.Revoke)
		api.GET("/enrollments/status", enrollmentHandler.StatusBulk)
		api.GET("/enrollments/status/:studentId", enrollmentHandler.Status)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
