package handlers

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nemocrk/my-wedding-app/environments"
	"github.com/nemocrk/my-wedding-app/internal/scheduler"
	"github.com/nemocrk/my-wedding-app/pkg/response"
	"github.com/nemocrk/my-wedding-app/pkg/validator"
)

type WorkerHandler struct {
	scheduler *scheduler.Scheduler
	ctx       context.Context
	config    *environments.Config
}

type StartWorkerRequest struct {
	IntervalSeconds *int `json:"intervalSeconds,omitempty" validate:"omitempty,min=1"`
}

func NewWorkerHandler(
	sched *scheduler.Scheduler,
	ctx context.Context,
	cfg *environments.Config,
) *WorkerHandler {
	return &WorkerHandler{
		scheduler: sched,
		ctx:       ctx,
		config:    cfg,
	}
}

// StartWorker godoc
// @Summary Start the queue worker
// @Description Starts the periodic queue drain with an optional interval override
// @Tags worker
// @Accept json
// @Produce json
// @Param x-wedding-auth-key header string true "Worker API key"
// @Param request body StartWorkerRequest false "Worker parameters (optional)"
// @Success 200 {object} response.SuccessResponse
// @Failure 422 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/worker/start [post]
func (h *WorkerHandler) StartWorker(c echo.Context) error {
	if h.scheduler.IsRunning() {
		return response.OkWithMessage(c, "Queue worker is already running", h.scheduler.GetStatus())
	}

	var req StartWorkerRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	interval := h.config.Worker.Interval
	if req.IntervalSeconds != nil {
		interval = time.Duration(*req.IntervalSeconds) * time.Second
	}

	if err := h.scheduler.StartWithInterval(h.ctx, interval); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Queue worker started", h.scheduler.GetStatus())
}

// StopWorker godoc
// @Summary Stop the queue worker
// @Description Stops the periodic queue drain
// @Tags worker
// @Accept json
// @Produce json
// @Param x-wedding-auth-key header string true "Worker API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/worker/stop [post]
func (h *WorkerHandler) StopWorker(c echo.Context) error {
	if !h.scheduler.IsRunning() {
		return response.OkWithMessage(c, "Queue worker is already stopped", h.scheduler.GetStatus())
	}

	if err := h.scheduler.Stop(); err != nil {
		return response.InternalServerError(c, err)
	}

	return response.OkWithMessage(c, "Queue worker stopped", h.scheduler.GetStatus())
}

// GetWorkerStatus godoc
// @Summary Get queue worker status
// @Description Returns run counters and the last refreshed queue stats
// @Tags worker
// @Accept json
// @Produce json
// @Param x-wedding-auth-key header string true "Worker API key"
// @Success 200 {object} response.SuccessResponse
// @Router /api/v1/worker/status [get]
func (h *WorkerHandler) GetWorkerStatus(c echo.Context) error {
	return response.Ok(c, h.scheduler.GetStatus())
}
