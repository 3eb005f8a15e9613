package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nemocrk/my-wedding-app/internal/domain"
	"github.com/nemocrk/my-wedding-app/internal/realtime"
	"github.com/nemocrk/my-wedding-app/internal/repository"
	"github.com/nemocrk/my-wedding-app/internal/service"
	"github.com/nemocrk/my-wedding-app/pkg/response"
	"github.com/nemocrk/my-wedding-app/pkg/validator"
)

type QueueHandler struct {
	repo   *repository.QueueRepository
	bridge *realtime.Bridge
}

func NewQueueHandler(repo *repository.QueueRepository, bridge *realtime.Bridge) *QueueHandler {
	return &QueueHandler{repo: repo, bridge: bridge}
}

type UpdateQueuedMessageRequest struct {
	MessageBody  *string    `json:"messageBody,omitempty" validate:"omitempty,max=4096"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
}

// LiveQueuedMessage is one queue row with its reconciled display status.
type LiveQueuedMessage struct {
	domain.QueuedMessage
	Display service.DisplayStatus `json:"display"`
}

// GetQueue godoc
// @Summary Get the outbound queue
// @Description Retrieves a paginated list of queued messages with optional status and session filters
// @Tags queue
// @Accept json
// @Produce json
// @Param x-wedding-auth-key header string true "Dispatch API key"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Param status query string false "Filter by status (pending, processing, sent, failed, skipped)"
// @Param session query string false "Filter by session (groom, bride)"
// @Success 200 {object} response.PaginatedResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/queue [get]
func (h *QueueHandler) GetQueue(c echo.Context) error {
	page, pageSize, err := parsePaginationParams(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	status, session := parseQueueFilters(c)

	messages, totalCount, err := h.repo.GetQueue(c.Request().Context(), status, session, page, pageSize)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Paginated(c, messages, page, pageSize, totalCount)
}

// GetLiveQueue godoc
// @Summary Get the queue with live delivery status
// @Description Same page as /queue, with each row's durable status merged with the realtime stream view
// @Tags queue
// @Accept json
// @Produce json
// @Param x-wedding-auth-key header string true "Dispatch API key"
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Param status query string false "Filter by status"
// @Param session query string false "Filter by session"
// @Success 200 {object} response.PaginatedResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/queue/live [get]
func (h *QueueHandler) GetLiveQueue(c echo.Context) error {
	page, pageSize, err := parsePaginationParams(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	status, session := parseQueueFilters(c)

	messages, totalCount, err := h.repo.GetQueue(c.Request().Context(), status, session, page, pageSize)
	if err != nil {
		return response.InternalServerError(c, err)
	}

	live := make([]LiveQueuedMessage, 0, len(messages))
	for _, msg := range messages {
		live = append(live, LiveQueuedMessage{
			QueuedMessage: msg,
			Display:       service.Reconcile(msg, h.bridge.Lookup),
		})
	}

	return response.Paginated(c, live, page, pageSize, totalCount)
}

// GetStats godoc
// @Summary Get queue statistics
// @Description Returns the count of queued messages per durable status
// @Tags queue
// @Accept json
// @Produce json
// @Param x-wedding-auth-key header string true "Dispatch API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/queue/stats [get]
func (h *QueueHandler) GetStats(c echo.Context) error {
	stats, err := h.repo.GetStats(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, stats)
}

// RetryAllFailed godoc
// @Summary Retry all failed messages
// @Description Moves every failed row back to pending so the worker resends them
// @Tags queue
// @Accept json
// @Produce json
// @Param x-wedding-auth-key header string true "Dispatch API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/queue/retry [post]
func (h *QueueHandler) RetryAllFailed(c echo.Context) error {
	count, err := h.repo.RetryAllFailed(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, map[string]any{
		"retried": count,
	})
}

// ForceSend godoc
// @Summary Force-send a queued message
// @Description Reschedules one pending or failed row to now, ahead of its original schedule
// @Tags queue
// @Accept json
// @Produce json
// @Param x-wedding-auth-key header string true "Dispatch API key"
// @Param id path int true "Queued message ID"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/queue/{id}/send [post]
func (h *QueueHandler) ForceSend(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	if err := h.repo.ForceSend(c.Request().Context(), id); err != nil {
		return response.BadRequest(c, err)
	}

	return response.OkWithMessage(c, "Message rescheduled for immediate send", map[string]any{
		"id": id,
	})
}

// UpdateMessage godoc
// @Summary Edit a queued message
// @Description Edits the body and/or schedule of a message that has not been sent yet
// @Tags queue
// @Accept json
// @Produce json
// @Param x-wedding-auth-key header string true "Dispatch API key"
// @Param id path int true "Queued message ID"
// @Param request body UpdateQueuedMessageRequest true "Fields to update"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/queue/{id} [put]
func (h *QueueHandler) UpdateMessage(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	var req UpdateQueuedMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	msg, err := h.repo.UpdateMessage(c.Request().Context(), id, req.MessageBody, req.ScheduledFor)
	if err != nil {
		return response.BadRequest(c, err)
	}

	return response.OkWithMessage(c, "Message updated", msg)
}

// DeleteMessage godoc
// @Summary Delete a queued message
// @Description Removes one row from the queue
// @Tags queue
// @Accept json
// @Produce json
// @Param x-wedding-auth-key header string true "Dispatch API key"
// @Param id path int true "Queued message ID"
// @Success 204
// @Failure 400 {object} response.ErrorResponse
// @Router /api/v1/queue/{id} [delete]
func (h *QueueHandler) DeleteMessage(c echo.Context) error {
	id, err := parseIDParam(c)
	if err != nil {
		return response.BadRequest(c, err)
	}

	if err := h.repo.DeleteMessage(c.Request().Context(), id); err != nil {
		return response.BadRequest(c, err)
	}

	return response.NoContent(c)
}

func parseQueueFilters(c echo.Context) (*domain.QueueStatus, *domain.SessionType) {
	var status *domain.QueueStatus
	if s := c.QueryParam("status"); s != "" {
		parsed := domain.QueueStatus(s)
		status = &parsed
	}

	var session *domain.SessionType
	if s := c.QueryParam("session"); s != "" {
		parsed := domain.SessionType(s)
		session = &parsed
	}

	return status, session
}

func parseIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid message id")
	}
	return id, nil
}

func parsePaginationParams(c echo.Context) (int, int, error) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)

	pageStr := c.QueryParam("page")
	pageSizeStr := c.QueryParam("pageSize")

	// Page
	page := defaultPage
	if pageStr != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p <= 0 {
			return 0, 0, fmt.Errorf("page must be a positive integer")
		}
		page = p
	}

	// Page size
	pageSize := defaultPageSize
	if pageSizeStr != "" {
		ps, err := strconv.Atoi(pageSizeStr)
		if err != nil || ps <= 0 || ps > maxPageSize {
			return 0, 0, fmt.Errorf("pageSize must be between 1 and %d", maxPageSize)
		}

		pageSize = ps
	}

	return page, pageSize, nil
}
