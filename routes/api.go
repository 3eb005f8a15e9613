package routes

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/nemocrk/my-wedding-app/environments"
	"github.com/nemocrk/my-wedding-app/handlers"
	"github.com/nemocrk/my-wedding-app/internal/middlewares"
)

// RegisterRoutes registers all API routes with middleware
func RegisterRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	templateHandler *handlers.TemplateHandler,
	dispatchHandler *handlers.DispatchHandler,
	queueHandler *handlers.QueueHandler,
	sessionHandler *handlers.SessionHandler,
	workerHandler *handlers.WorkerHandler,
	cfg *environments.Config,
) {
	e.GET("/health", healthHandler.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 base group
	v1 := e.Group("/api/v1")

	// Dispatch surface (templates, preview/start/progress, queue reads
	// and maintenance) shares one API key.
	dispatch := v1.Group("", middlewares.APIKeyAuth(cfg.Auth.DispatchAPIKey))

	dispatch.GET("/templates", templateHandler.GetEligibleTemplates)

	dispatch.POST("/dispatch/preview", dispatchHandler.Preview)
	dispatch.POST("/dispatch", dispatchHandler.StartDispatch)
	dispatch.GET("/dispatch/progress", dispatchHandler.GetProgress)

	dispatch.GET("/queue", queueHandler.GetQueue)
	dispatch.GET("/queue/live", queueHandler.GetLiveQueue)
	dispatch.GET("/queue/stats", queueHandler.GetStats)
	dispatch.POST("/queue/retry", queueHandler.RetryAllFailed)
	dispatch.POST("/queue/:id/send", queueHandler.ForceSend)
	dispatch.PUT("/queue/:id", queueHandler.UpdateMessage)
	dispatch.DELETE("/queue/:id", queueHandler.DeleteMessage)

	dispatch.GET("/sessions/status", sessionHandler.GetSessionsStatus)

	// Worker control has its own API key
	workerGroup := v1.Group("/worker", middlewares.APIKeyAuth(cfg.Auth.WorkerAPIKey))

	workerGroup.POST("/start", workerHandler.StartWorker)
	workerGroup.POST("/stop", workerHandler.StopWorker)
	workerGroup.GET("/status", workerHandler.GetWorkerStatus)
}
