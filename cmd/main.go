package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"smartinventory/internal/analytics"
	"smartinventory/internal/caching"
	"smartinventory/internal/config"
	"smartinventory/internal/handlers"
	"smartinventory/internal/jobs"
	"smartinventory/internal/jobs/background"
	"smartinventory/internal/middleware"
	"smartinventory/internal/repositories"
	"smartinventory/internal/services"
	"smartinventory/pkg/database"
	"smartinventory/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logger.Level, cfg.Logger.AsJSON); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	err = run(cfg)
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The pool is created on the first query; database settings are read then.
	db := database.Shared()
	defer db.Close()

	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	defer func() {
		if err := cacheSvc.Close(); err != nil {
			logger.L().Warn("failed to close redis client", logger.ErrorF(err))
		}
	}()
	flushCategoryCache(ctx, cacheSvc)

	dashboardSvc := analytics.NewDashboardService(db)
	categorySvc := services.NewCategoryService(repositories.NewCategoryRepo(db), cacheSvc)

	var archive background.ReportArchiver
	if cfg.Minio.Enabled() {
		minioSvc, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
		if err != nil {
			logger.L().Error("failed to initialize minio service", logger.ErrorF(err))
			return err
		}
		archive = services.NewReportArchive(minioSvc, dashboardSvc, cfg.Minio.Bucket)
	} else {
		logger.L().Info("minio endpoint not set, dashboard archiving disabled")
	}

	scheduler, err := background.NewJobScheduler(cfg.Jobs, jobs.NewInventoryAlertService(db), archive)
	if err != nil {
		logger.L().Error("failed to create job scheduler", logger.ErrorF(err))
		return err
	}

	opts := handlers.Options{ExposeErrors: cfg.Server.IsDevelopment()}
	dashboardHandlers := handlers.NewDashboardHandlers(dashboardSvc, opts)
	categoryHandlers := handlers.NewCategoryHandlers(categorySvc, opts)
	healthHandlers := handlers.NewHealthHandlers(db, cacheSvc)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLogger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	e.GET("/health", healthHandlers.LivenessCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)

	api := e.Group("/api",
		middleware.VersionHeader(middleware.APIVersion),
		middleware.RateLimit(cacheSvc, cfg.Server.RateLimit),
	)
	api.GET("/analytics/dashboard", dashboardHandlers.GetDashboard)

	categories := api.Group("/categories")
	categories.GET("", categoryHandlers.ListCategories)
	categories.POST("", categoryHandlers.CreateCategory)
	categories.GET("/:id", categoryHandlers.GetCategory)
	categories.PUT("/:id", categoryHandlers.UpdateCategory)
	categories.DELETE("/:id", categoryHandlers.DeleteCategory)

	scheduler.Start()

	serverErr := make(chan error, 1)
	go func() {
		logger.L().Info("server starting",
			logger.String("addr", cfg.Server.Address()),
			logger.String("environment", cfg.Server.Environment),
		)
		if err := e.Start(cfg.Server.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.L().Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.L().Error("server failed", logger.ErrorF(err))
			_ = scheduler.Stop()
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.L().Warn("http server shutdown incomplete", logger.ErrorF(err))
	}
	if err := scheduler.Stop(); err != nil {
		logger.L().Warn("job scheduler shutdown incomplete", logger.ErrorF(err))
	}

	logger.L().Info("server stopped")
	return nil
}

// flushCategoryCache drops category entries written by a previous
// deployment, whose shape may no longer match.
func flushCategoryCache(ctx context.Context, cache caching.CacheService) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := cache.InvalidateCategories(ctx); err != nil {
		logger.L().Warn("failed to flush category cache", logger.ErrorF(err))
	}
}
