package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dispatch_crm_go/config"
	"dispatch_crm_go/db"
	"dispatch_crm_go/handlers"
	"dispatch_crm_go/logger"
	"dispatch_crm_go/middleware"
	"dispatch_crm_go/models"
	"dispatch_crm_go/services"
	"dispatch_crm_go/services/jobs"
	"dispatch_crm_go/services/telephony"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zl, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	logger.Set(zl)
	defer zl.Sync() //nolint:errcheck

	// Initialize database
	if err := db.Initialize(db.Options{
		Path:        cfg.DBPath,
		Environment: cfg.Environment,
		RemoteURL:   cfg.TursoDatabaseURL,
		AuthToken:   cfg.TursoAuthToken,
	}); err != nil {
		zl.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(models.All()...); err != nil {
		zl.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Wire services
	storage := services.NewStorage(cfg)
	reconciler := services.NewReconciler(db.DB, telephony.NewTelnyxService(cfg.ReportClientOptions()), storage)
	handlers.CallSync = reconciler
	handlers.Documents = services.NewDocumentService(
		db.DB,
		services.NewChromePDFRenderer(cfg.ChromePath),
		storage,
		services.NewResendMailer(cfg),
		services.RateConfirmationSettings{BrokerName: cfg.CompanyName, DispatcherName: cfg.DispatcherName},
	)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()

	// Middleware
	e.Use(middleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{AllowOrigins: cfg.AllowedOrigins}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Static files (locally stored documents and call reports)
	e.Static("/static/uploads", cfg.UploadDir)

	limits := middleware.NewLimiters()
	defer limits.Stop()
	handlers.RegisterRoutes(e, limits)

	// Scheduled call reconciliation
	scheduler, err := jobs.StartCallSyncScheduler(reconciler, cfg.CallSyncCron, cfg.CallSyncTimezone)
	if err != nil {
		zl.Fatal("Failed to start call sync scheduler", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start server
	go func() {
		zl.Info("Server starting", zap.String("port", cfg.ServerPort), zap.String("storage", storage.Name()))
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zl.Info("Shutting down")

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("Server shutdown failed", zap.Error(err))
	}
}
