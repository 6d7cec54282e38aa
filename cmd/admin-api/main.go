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

	_ "github.com/openlearn-dev/lms-admin-api/api/swagger"
	"github.com/openlearn-dev/lms-admin-api/internal/handler"
	"github.com/openlearn-dev/lms-admin-api/internal/lms"
	"github.com/openlearn-dev/lms-admin-api/internal/middleware"
	"github.com/openlearn-dev/lms-admin-api/internal/repository"
	"github.com/openlearn-dev/lms-admin-api/internal/service"
	"github.com/openlearn-dev/lms-admin-api/pkg/cache"
	"github.com/openlearn-dev/lms-admin-api/pkg/config"
	"github.com/openlearn-dev/lms-admin-api/pkg/logger"
	corsmiddleware "github.com/openlearn-dev/lms-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/openlearn-dev/lms-admin-api/pkg/middleware/requestid"
	"github.com/openlearn-dev/lms-admin-api/pkg/storage"
)

// @title LMS Admin API
// @version 0.1.0
// @description Admin gateway over the LMS backend: dashboards, learner browsing and report exports
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()

	// Redis is optional. Without it the dashboard recomputes on every request
	// but the gateway stays fully functional.
	var cacheRepo *repository.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, dashboard cache disabled")
	} else {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cacheRepo != nil)

	backend := lms.New(cfg.Backend, logr, metricsSvc)

	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Source: backend,
		Cache:  cacheSvc,
		Logger: logr,
		Config: service.DashboardServiceConfig{
			CacheTTL:   cfg.Dashboard.CacheTTL,
			SampleSize: cfg.Dashboard.SampleSize,
		},
	})

	learnerSvc := service.NewLearnerService(service.LearnerServiceParams{
		Pager:   backend,
		Metrics: metricsSvc,
		Logger:  logr,
		Config: service.LearnerServiceConfig{
			DefaultPageSize: cfg.Learners.DefaultPageSize,
			MaxPageSize:     cfg.Learners.MaxPageSize,
			SessionTTL:      cfg.Learners.SessionTTL,
		},
	})
	learnerSvc.StartCleanup(ctx, time.Minute)

	exportStorage, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	reportSvc := service.NewReportService(service.ReportServiceParams{
		Source:  backend,
		Storage: exportStorage,
		Signer:  signer,
		Metrics: metricsSvc,
		Logger:  logr,
		Config: service.ReportServiceConfig{
			APIPrefix:       cfg.APIPrefix,
			WalkPageSize:    cfg.Exports.WalkPageSize,
			WalkMaxPages:    cfg.Exports.WalkMaxPages,
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			Workers:         cfg.Exports.WorkerConcurrency,
			MaxRetries:      cfg.Exports.WorkerRetries,
		},
	})
	reportSvc.Start(ctx)
	defer reportSvc.Stop()

	courseSvc := service.NewCourseService(backend, dashboardSvc, logr)
	userSvc := service.NewUserService(backend, logr)
	providerSvc := service.NewProviderService(backend, logr)
	verbSvc := service.NewVerbService(backend, logr)

	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	learnerHandler := handler.NewLearnerHandler(learnerSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	courseHandler := handler.NewCourseHandler(courseSvc)
	userHandler := handler.NewUserHandler(userSvc)
	providerHandler := handler.NewProviderHandler(providerSvc)
	verbHandler := handler.NewVerbHandler(verbSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// Download links are signed URLs; the token is the auth.
	api.GET("/export/:token", reportHandler.Download)

	admin := api.Group("", middleware.JWT(cfg.JWT.Secret), middleware.RequireAdmin())
	{
		if cfg.Dashboard.Enabled {
			admin.GET("/dashboard", dashboardHandler.Summary)
		}

		sessions := admin.Group("/learners/sessions")
		{
			sessions.POST("", learnerHandler.CreateSession)
			sessions.GET("/:id", learnerHandler.GetSession)
			sessions.PATCH("/:id", learnerHandler.UpdateSession)
			sessions.DELETE("/:id", learnerHandler.CloseSession)
			sessions.POST("/:id/next", learnerHandler.NextPage)
			sessions.POST("/:id/prev", learnerHandler.PrevPage)
		}

		if cfg.Exports.Enabled {
			reports := admin.Group("/reports")
			{
				reports.POST("/export", reportHandler.Export)
				reports.GET("/jobs", reportHandler.ListJobs)
				reports.GET("/jobs/:id", reportHandler.GetJob)
			}
		}

		registerCRUD(admin.Group("/courses"), courseHandler.List, courseHandler.Create, courseHandler.Update, courseHandler.Delete)
		registerCRUD(admin.Group("/users"), userHandler.List, userHandler.Create, userHandler.Update, userHandler.Delete)
		registerCRUD(admin.Group("/providers"), providerHandler.List, providerHandler.Create, providerHandler.Update, providerHandler.Delete)
		registerCRUD(admin.Group("/verbs"), verbHandler.List, verbHandler.Create, verbHandler.Update, verbHandler.Delete)

		admin.GET("/system/metrics", metricsHandler.Snapshot)
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
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}

func registerCRUD(g *gin.RouterGroup, list, create, update, remove gin.HandlerFunc) {
	g.GET("", list)
	g.POST("", create)
	g.PUT("/:id", update)
	g.DELETE("/:id", remove)
}
