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
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/ricoeriii/pengelola-bansos/api/swagger"
	"github.com/ricoeriii/pengelola-bansos/internal/handler"
	internalmiddleware "github.com/ricoeriii/pengelola-bansos/internal/middleware"
	"github.com/ricoeriii/pengelola-bansos/internal/repository"
	"github.com/ricoeriii/pengelola-bansos/internal/service"
	"github.com/ricoeriii/pengelola-bansos/pkg/cache"
	"github.com/ricoeriii/pengelola-bansos/pkg/config"
	"github.com/ricoeriii/pengelola-bansos/pkg/database"
	"github.com/ricoeriii/pengelola-bansos/pkg/logger"
	corsmiddleware "github.com/ricoeriii/pengelola-bansos/pkg/middleware/cors"
	reqidmiddleware "github.com/ricoeriii/pengelola-bansos/pkg/middleware/requestid"
	"github.com/ricoeriii/pengelola-bansos/pkg/middleware/session"
	"github.com/ricoeriii/pengelola-bansos/pkg/reportapi"
)

// @title Pengelola Bansos Report Console
// @version 1.0.0
// @description Records, filters, edits and exports aid distribution reports held by the report API.
// @BasePath /
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

	metrics := service.NewMetricsService()
	client := reportapi.NewClient(reportapi.Config{
		BaseURL: cfg.ReportAPI.BaseURL,
		Path:    cfg.ReportAPI.Path,
		Timeout: cfg.ReportAPI.Timeout,
	}, metrics, logr)

	checks := map[string]handler.ReadinessCheck{}

	notifications, closeNotifications := buildNotifications(ctx, cfg, logr, checks)
	defer closeNotifications()

	exportParams := service.ExportServiceParams{Observer: metrics, Logger: logr}
	var exportLogHandler *handler.ExportLogHandler
	if cfg.Export.LogEnabled {
		db, exportLogs, err := buildExportLog(cfg, metrics, logr)
		if err != nil {
			logr.Fatal("export log unavailable", zap.Error(err))
		}
		defer db.Close()
		exportLogs.Start(ctx)
		defer exportLogs.Stop()
		exportParams.Recorder = exportLogs
		exportLogHandler = handler.NewExportLogHandler(exportLogs)
		checks["postgres"] = func(ctx context.Context) error { return db.PingContext(ctx) }
	}
	exports := service.NewExportService(exportParams)

	tables := service.NewTableRegistry(func() *service.ReportTable {
		return service.NewReportTable(client, metrics, logr)
	}, cfg.Sessions.TTL, logr)
	tables.OnSizeChange(metrics.SetActiveTables)
	tables.StartCleanup(ctx, cfg.Sessions.CleanupInterval)

	forms := service.NewReportFormService(client, validator.New(), service.ProofPolicy{
		MaxBytes:          cfg.Proof.MaxFileSizeBytes,
		AllowedExtensions: cfg.Proof.AllowedExtensions,
	}, logr)

	dashboardHandler := handler.NewDashboardHandler(service.NewDashboardService(client, logr), forms, notifications)
	tableHandler := handler.NewReportTableHandler(tables, exports, notifications, client.ProofURL, logr)
	formHandler := handler.NewReportFormHandler(forms, notifications)
	notificationHandler := handler.NewNotificationHandler(notifications)
	metricsHandler := handler.NewMetricsHandler(metrics, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(session.Middleware(cfg.Sessions.TTL, cfg.Env == config.EnvProduction))
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics, "/health", "/ready", "/metrics"))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	r.GET("/", dashboardHandler.Dashboard)
	r.GET("/programs", dashboardHandler.Programs)
	r.POST("/create-report", formHandler.Create)
	r.GET("/edit-report/:id", formHandler.EditForm)
	r.PUT("/edit-report/:id", formHandler.Update)
	r.GET("/reports", tableHandler.List)
	r.GET("/reports/export", tableHandler.Export)
	r.DELETE("/reports/:id", tableHandler.Delete)
	r.GET("/notifications", notificationHandler.Drain)
	if exportLogHandler != nil {
		r.GET("/export-logs", exportLogHandler.Recent)
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "report_api", cfg.ReportAPI.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
	logr.Info("server exited")
}

// buildNotifications prefers the redis store and falls back to process memory
// when notifications are disabled or redis is unreachable.
func buildNotifications(ctx context.Context, cfg *config.Config, logr *zap.Logger, checks map[string]handler.ReadinessCheck) (*service.NotificationService, func()) {
	inMemory := func() (*service.NotificationService, func()) {
		repo := repository.NewMemoryNotificationRepository()
		repo.StartCleanup(ctx, cfg.Sessions.CleanupInterval)
		return service.NewNotificationService(repo, cfg.Notifications.TTL, logr), func() {}
	}
	if !cfg.Notifications.Enabled {
		return inMemory()
	}

	client, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, keeping notifications in memory", zap.Error(err))
		return inMemory()
	}
	checks["redis"] = cache.Check(client)

	repo := repository.NewNotificationRepository(client, logr)
	return service.NewNotificationService(repo, cfg.Notifications.TTL, logr), func() { _ = repo.Close() }
}

func buildExportLog(cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) (*sqlx.DB, *service.ExportLogService, error) {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := database.Migrate(db, cfg.Database.MigrationsDir); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	svc := service.NewExportLogService(repository.NewExportLogRepository(db), metrics, service.ExportLogConfig{
		Workers:    cfg.Export.LogWorkers,
		BufferSize: cfg.Export.LogBufferSize,
		MaxRetries: cfg.Export.LogMaxRetries,
		RetryDelay: time.Second,
	}, logr)
	return db, svc, nil
}
