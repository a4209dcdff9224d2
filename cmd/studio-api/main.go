package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/Cruzitooo/salsa-studio-api/api/swagger"
	"github.com/Cruzitooo/salsa-studio-api/internal/handler"
	"github.com/Cruzitooo/salsa-studio-api/internal/middleware"
	"github.com/Cruzitooo/salsa-studio-api/internal/repository"
	"github.com/Cruzitooo/salsa-studio-api/internal/service"
	"github.com/Cruzitooo/salsa-studio-api/pkg/cache"
	"github.com/Cruzitooo/salsa-studio-api/pkg/config"
	"github.com/Cruzitooo/salsa-studio-api/pkg/database"
	"github.com/Cruzitooo/salsa-studio-api/pkg/gateway"
	"github.com/Cruzitooo/salsa-studio-api/pkg/logger"
	corsmiddleware "github.com/Cruzitooo/salsa-studio-api/pkg/middleware/cors"
	reqidmiddleware "github.com/Cruzitooo/salsa-studio-api/pkg/middleware/requestid"
)

// @title Salsa Studio API
// @version 1.0.0
// @description Attendance and payment management for a salsa school
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
		logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	categoryRepo := repository.NewCategoryRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	conceptRepo := repository.NewConceptRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	paylink := gateway.NewPaylinkClient(cfg.PaymentLink.BaseURL, cfg.PaymentLink.Timeout)

	categorySvc := service.NewCategoryService(categoryRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	scheduleSvc := service.NewScheduleService(categoryRepo, cfg.Schedule, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, categoryRepo, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, studentRepo, paylink, cfg.Billing, validate, logr)
	conceptSvc := service.NewConceptService(conceptRepo, logr)
	exportSvc := service.NewExportService(paymentSvc, logr)
	dashboardSvc := service.NewDashboardService(cacheRepo, categoryRepo, studentRepo, paymentSvc,
		cfg.Billing, cfg.Dashboard, metricsSvc, logr)

	categoryHandler := handler.NewCategoryHandler(categorySvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc, attendanceSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc, metricsSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, exportSvc, dashboardSvc, metricsSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	conceptHandler := handler.NewConceptHandler(conceptSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/categories", categoryHandler.List)
		api.POST("/categories", categoryHandler.Create)
		api.GET("/categories/:id", categoryHandler.Get)
		api.PUT("/categories/:id", categoryHandler.Update)
		api.DELETE("/categories/:id", categoryHandler.Delete)
		api.GET("/categories/:id/sessions", scheduleHandler.Sessions)
		api.GET("/categories/:id/roster", scheduleHandler.Roster)

		api.GET("/students", studentHandler.List)
		api.POST("/students", studentHandler.Create)
		api.GET("/students/:id", studentHandler.Get)
		api.PUT("/students/:id", studentHandler.Update)
		api.DELETE("/students/:id", studentHandler.Delete)
		api.GET("/students/:id/attendance/summary", attendanceHandler.MonthSummary)
		api.GET("/students/:id/attendance/history", attendanceHandler.MonthHistory)
		api.GET("/students/:id/payments/balance", paymentHandler.StudentBalance)

		api.GET("/attendance", attendanceHandler.Find)
		api.PUT("/attendance", attendanceHandler.Upsert)
		api.POST("/attendance/toggle", attendanceHandler.Toggle)

		api.GET("/payments", paymentHandler.History)
		api.POST("/payments/cash", paymentHandler.RecordCash)
		api.POST("/payments/links", paymentHandler.CreateLink)
		api.GET("/payments/export", paymentHandler.Export)

		api.GET("/concepts", conceptHandler.List)
		api.POST("/concepts", conceptHandler.Add)
		api.DELETE("/concepts/:name", conceptHandler.Remove)

		api.GET("/dashboard/payments", dashboardHandler.Payments)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
