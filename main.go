package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/nemocrk/my-wedding-app/environments"
	"github.com/nemocrk/my-wedding-app/handlers"
	"github.com/nemocrk/my-wedding-app/internal/realtime"
	"github.com/nemocrk/my-wedding-app/internal/repository"
	"github.com/nemocrk/my-wedding-app/internal/scheduler"
	"github.com/nemocrk/my-wedding-app/internal/service"
	"github.com/nemocrk/my-wedding-app/pkg/cache"
	"github.com/nemocrk/my-wedding-app/pkg/database"
	"github.com/nemocrk/my-wedding-app/pkg/invitelink"
	"github.com/nemocrk/my-wedding-app/pkg/logger"
	"github.com/nemocrk/my-wedding-app/pkg/validator"
	"github.com/nemocrk/my-wedding-app/pkg/whatsapp"
	"github.com/nemocrk/my-wedding-app/routes"

	_ "github.com/nemocrk/my-wedding-app/docs" // swagger docs
)

// @title Wedding Dispatch Service API
// @version 1.0
// @description Guest invitation dispatch over WhatsApp with a durable queue and live delivery status

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @schemes http https
func main() {
	logger.Init()

	// Load config
	cfg := environments.Load()

	// Hard-fail if required secrets are missing
	if cfg.Auth.DispatchAPIKey == "" {
		logger.Fatalf("DISPATCH_API_KEY is required but not set")
	}
	if cfg.Auth.WorkerAPIKey == "" {
		logger.Fatalf("WORKER_API_KEY is required but not set")
	}
	if cfg.Gateway.APIKey == "" {
		logger.Fatalf("GATEWAY_API_KEY is required but not set")
	}

	logger.Infof("Starting Wedding Dispatch Service...")

	// Init DB
	db, err := database.NewMySQLDB(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed data
	if os.Getenv("SEED_DATA") == "true" {
		if err := database.SeedTestData(db); err != nil {
			logger.Warnf("Failed to seed test data: %v", err)
		}
	}

	// Init link cache (optional; resolver works without it)
	var cacheClient *cache.Client
	cacheClient, err = cache.NewClient(cfg.Redis, cfg.Link.CacheTTL)
	if err != nil {
		logger.Warnf("Redis not available, link caching disabled: %v", err)
		cacheClient = nil
	}

	// Gateway client for both sender sessions
	gateway := whatsapp.NewClient(cfg.Gateway)
	logger.Infof("Gateway configured: %s (sessions: %s, %s)",
		cfg.Gateway.BaseURL, cfg.Gateway.GroomSession, cfg.Gateway.BrideSession)

	// Link resolver. The interface expects a nilable cache, so the
	// typed-nil pointer must not be wrapped when the client is absent.
	var linkResolver *invitelink.Resolver
	if cacheClient != nil {
		linkResolver = invitelink.NewResolver(cfg.Link, cacheClient)
	} else {
		linkResolver = invitelink.NewResolver(cfg.Link, nil)
	}

	// Repositories
	queueRepo := repository.NewQueueRepository(db)
	templateRepo := repository.NewTemplateRepository(db)

	// Dispatch pipeline
	templateResolver := service.NewTemplateResolver()
	composer := service.NewComposer(linkResolver)
	dispatcher := service.NewDispatcher(
		composer,
		queueRepo,
		cfg.Dispatch.SettleDelay,
		cfg.Dispatch.BulkLinkThreshold,
	)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Realtime bridge: one stream per process, torn down with ctx.
	bridge := realtime.NewBridge(gateway.EventsURL(), cfg.Gateway.APIKey)
	go func() {
		if err := bridge.Run(ctx); err != nil {
			logger.Errorf("Realtime bridge stopped: %v", err)
		}
	}()

	// Queue worker
	worker := service.NewQueueWorker(queueRepo, gateway, cfg.Worker)
	sched := scheduler.NewScheduler(worker, cfg.Worker.Interval)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, cacheClient, bridge)
	templateHandler := handlers.NewTemplateHandler(templateRepo, templateResolver)
	dispatchHandler := handlers.NewDispatchHandler(dispatcher, templateResolver, templateRepo, ctx)
	queueHandler := handlers.NewQueueHandler(queueRepo, bridge)
	sessionHandler := handlers.NewSessionHandler(gateway, bridge)
	workerHandler := handlers.NewWorkerHandler(sched, ctx, cfg)

	// Auto-start worker
	if os.Getenv("AUTO_START_WORKER") != "false" {
		logger.Infof("Auto-starting queue worker...")
		if err := sched.Start(ctx); err != nil {
			logger.Warnf("Failed to auto-start queue worker: %v", err)
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			"x-wedding-auth-key",
		},
	}))

	// Setup routes
	routes.RegisterRoutes(e, healthHandler, templateHandler, dispatchHandler, queueHandler, sessionHandler, workerHandler, cfg)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		logger.Infof("Swagger docs available at http://localhost%s/swagger/index.html", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	// Let a running dispatch batch finish enqueueing before the context
	// is cancelled; the queue is durable, so anything enqueued survives.
	if dispatcher.InFlight() {
		logger.Infof("Waiting for in-flight dispatch batch...")
		select {
		case <-dispatcher.Done():
		case <-time.After(30 * time.Second):
			logger.Warnf("Dispatch batch still running, abandoning wait")
		}
	}

	// Cancel context to signal bridge and worker goroutines to stop
	cancel()

	// Stop worker first (with timeout)
	if sched.IsRunning() {
		logger.Infof("Stopping queue worker...")
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()

		done := make(chan error, 1)
		go func() {
			done <- sched.Stop()
		}()

		select {
		case err := <-done:
			if err != nil {
				logger.Errorf("Error stopping queue worker: %v", err)
			} else {
				logger.Infof("Queue worker stopped successfully")
			}
		case <-stopCtx.Done():
			logger.Warnf("Queue worker stop timeout, forcing shutdown")
		}
	}

	// Shutdown HTTP server (with timeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	// Close database connection
	logger.Infof("Closing database connection...")
	if err := db.Close(); err != nil {
		logger.Errorf("Error closing database: %v", err)
	}

	// Close Redis connection
	if cacheClient != nil {
		logger.Infof("Closing Redis connection...")
		if err := cacheClient.Close(); err != nil {
			logger.Errorf("Error closing Redis: %v", err)
		}
	}

	logger.Infof("Graceful shutdown completed")
}
