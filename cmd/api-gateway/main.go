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
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/eduportal-api/api/swagger"
	"github.com/noah-isme/eduportal-api/internal/handler"
	"github.com/noah-isme/eduportal-api/internal/middleware"
	"github.com/noah-isme/eduportal-api/internal/models"
	"github.com/noah-isme/eduportal-api/internal/repository"
	"github.com/noah-isme/eduportal-api/internal/service"
	"github.com/noah-isme/eduportal-api/pkg/cache"
	"github.com/noah-isme/eduportal-api/pkg/config"
	"github.com/noah-isme/eduportal-api/pkg/database"
	"github.com/noah-isme/eduportal-api/pkg/jobs"
	"github.com/noah-isme/eduportal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/eduportal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/eduportal-api/pkg/middleware/requestid"
	"github.com/noah-isme/eduportal-api/pkg/storage"
)

// @title EduPortal API
// @version 1.0.0
// @description School enrollment and admission portal backend
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, report cache disabled", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	metrics := service.NewMetricsService()

	// Repositories
	applicationRepo := repository.NewApplicationRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classRepo := repository.NewClassRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	userRepo := repository.NewUserRepository(db)

	var cacheService *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metrics, cfg.Reports.CacheTTL, logr, cfg.Reports.CacheEnabled)
		defer cacheRepo.Close() //nolint:errcheck
	}

	// Services
	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "eduportal-api",
		Audience:           []string{"eduportal"},
	})
	applicationService := service.NewApplicationService(applicationRepo, studentRepo, classRepo, enrollmentRepo, cacheService, metrics, validate, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, applicationRepo, cacheService, metrics, logr)
	reportService := service.NewReportService(applicationRepo, enrollmentRepo, studentRepo, classRepo, cacheService, cfg.Reports.CacheTTL, logr)
	studentService := service.NewStudentService(studentRepo, logr)
	classService := service.NewClassService(classRepo, logr)

	var exportService *service.ExportService
	if cfg.Exports.Enabled {
		localStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportService = service.NewExportService(reportService, localStorage, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, metrics, logr, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		exportService.StartWorkers(ctx)
		defer exportService.StopWorkers()

		go func() {
			ticker := time.NewTicker(cfg.Exports.CleanupInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if removed, err := exportService.Cleanup(0); err != nil {
						logr.Sugar().Warnw("export cleanup failed", "error", err)
					} else if len(removed) > 0 {
						logr.Sugar().Infow("export cleanup removed files", "count", len(removed))
					}
				}
			}
		}()
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	applicationHandler := handler.NewApplicationHandler(applicationService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	reportHandler := handler.NewReportHandler(reportService)
	studentHandler := handler.NewStudentHandler(studentService)
	classHandler := handler.NewClassHandler(classService)
	exportHandler := handler.NewExportHandler(exportService)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	officerRoles := []models.UserRole{models.RoleAdmin, models.RoleAdmissionOfficer}
	staffRoles := []models.UserRole{models.RoleAdmin, models.RoleAdmissionOfficer, models.RoleTeacher}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
			auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)
			auth.GET("/me", middleware.JWT(authService), authHandler.Me)
		}

		applications := api.Group("/applications")
		{
			// Submission is the public admission form. Logged-in callers
			// are still attributed via the optional token.
			applications.POST("", middleware.OptionalJWT(authService), applicationHandler.Submit)

			protected := applications.Group("", middleware.JWT(authService))
			{
				protected.GET("", middleware.RequireRoles(officerRoles...), applicationHandler.List)
				protected.GET("/:id", middleware.RequireRoles(officerRoles...), applicationHandler.Get)
				protected.POST("/:id/approve",
					middleware.RequireRoles(officerRoles...),
					middleware.Audit(userRepo, models.AuditActionApplicationApprove, "applications"),
					applicationHandler.Approve)
				protected.POST("/:id/reject",
					middleware.RequireRoles(officerRoles...),
					middleware.Audit(userRepo, models.AuditActionApplicationReject, "applications"),
					applicationHandler.Reject)
				protected.POST("/:id/documents", applicationHandler.AddDocument)
				protected.POST("/:id/documents/:documentId/verify", middleware.RequireRoles(officerRoles...), applicationHandler.VerifyDocument)
				protected.POST("/:id/documents/:documentId/reject", middleware.RequireRoles(officerRoles...), applicationHandler.RejectDocument)
				protected.POST("/:id/payment", middleware.RequireRoles(officerRoles...), applicationHandler.RecordPayment)
			}
		}

		enrollments := api.Group("/enrollments", middleware.JWT(authService))
		{
			enrollments.GET("", middleware.RequireRoles(staffRoles...), enrollmentHandler.List)
			enrollments.GET("/:id", middleware.RequireRoles(staffRoles...), enrollmentHandler.Get)
			enrollments.POST("/:id/confirm",
				middleware.RequireRoles(officerRoles...),
				middleware.Audit(userRepo, models.AuditActionEnrollmentConfirm, "enrollments"),
				enrollmentHandler.Confirm)
			enrollments.POST("/:id/cancel",
				middleware.RequireRoles(officerRoles...),
				middleware.Audit(userRepo, models.AuditActionEnrollmentCancel, "enrollments"),
				enrollmentHandler.Cancel)
		}

		students := api.Group("/students", middleware.JWT(authService), middleware.RequireRoles(staffRoles...))
		{
			students.GET("", studentHandler.List)
			students.GET("/:id", studentHandler.Get)
		}

		classes := api.Group("/classes", middleware.JWT(authService))
		{
			classes.GET("", classHandler.List)
			classes.GET("/:id", classHandler.Get)
		}

		reports := api.Group("/reports", middleware.JWT(authService), middleware.RequireRoles(staffRoles...))
		{
			reports.GET("/summary", reportHandler.Summary)
			reports.GET("/class-list/:classId", reportHandler.ClassList)
			reports.GET("/confirmation/:enrollmentId", reportHandler.Confirmation)
		}

		exports := api.Group("/exports")
		{
			exports.POST("", middleware.JWT(authService), middleware.RequireRoles(officerRoles...), exportHandler.Create)
			exports.GET("/:id", middleware.JWT(authService), middleware.RequireRoles(officerRoles...), exportHandler.Status)
			// Downloads are authorised by the signed token itself.
			exports.GET("/download/:token", exportHandler.Download)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
