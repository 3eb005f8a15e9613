package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/nemocrk/my-wedding-app/internal/domain"
	"github.com/nemocrk/my-wedding-app/internal/repository"
	"github.com/nemocrk/my-wedding-app/internal/service"
	"github.com/nemocrk/my-wedding-app/pkg/response"
	"github.com/nemocrk/my-wedding-app/pkg/validator"
)

// DispatchHandler exposes the preview/start/progress surface of the
// dispatch pipeline. The background loop runs on appCtx so it survives
// the HTTP request that started it.
type DispatchHandler struct {
	dispatcher *service.Dispatcher
	templates  *service.TemplateResolver
	templRepo  *repository.TemplateRepository
	appCtx     context.Context
}

func NewDispatchHandler(
	dispatcher *service.Dispatcher,
	templates *service.TemplateResolver,
	templRepo *repository.TemplateRepository,
	appCtx context.Context,
) *DispatchHandler {
	return &DispatchHandler{
		dispatcher: dispatcher,
		templates:  templates,
		templRepo:  templRepo,
		appCtx:     appCtx,
	}
}

type PreviewRequest struct {
	TemplateID *int64             `json:"templateId,omitempty" validate:"omitempty,min=1"`
	Content    *string            `json:"content,omitempty" validate:"omitempty,max=4096"`
	Recipients []domain.Recipient `json:"recipients" validate:"required,min=1,dive"`
}

type StartDispatchRequest struct {
	Content    string             `json:"content" validate:"required,max=4096"`
	Recipients []domain.Recipient `json:"recipients" validate:"required,min=1,dive"`
}

// Preview godoc
// @Summary Preview a message against selected guests
// @Description Renders a template or free-form content for the selected recipients without sending anything
// @Tags dispatch
// @Accept json
// @Produce json
// @Param x-wedding-auth-key header string true "Dispatch API key"
// @Param request body PreviewRequest true "Template or content plus recipients"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/dispatch/preview [post]
func (h *DispatchHandler) Preview(c echo.Context) error {
	var req PreviewRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	var tmpl domain.MessageTemplate

	switch {
	case req.TemplateID != nil:
		stored, err := h.templRepo.GetByID(c.Request().Context(), *req.TemplateID)
		if err != nil {
			return response.InternalServerError(c, err)
		}
		if stored == nil {
			return response.NotFound(c, fmt.Sprintf("no template with id %d", *req.TemplateID))
		}

		// A template that is inactive or automatic must not leak into
		// the manual dispatch flow, not even as a preview.
		if eligible := h.templates.ListEligible([]domain.MessageTemplate{*stored}); len(eligible) == 0 {
			return response.BadRequestWithMessage(c, "template is not eligible for manual dispatch")
		}
		tmpl = *stored

	case req.Content != nil && *req.Content != "":
		tmpl = domain.MessageTemplate{Content: *req.Content}

	default:
		return response.BadRequestWithMessage(c, "either templateId or content is required")
	}

	preview := h.templates.Preview(tmpl, req.Recipients)

	return response.Ok(c, map[string]any{
		"preview":         preview,
		"bulkLinkWarning": h.dispatcher.BulkLinkWarning(tmpl.Content, len(req.Recipients)),
	})
}

// StartDispatch godoc
// @Summary Start a dispatch batch
// @Description Enqueues one message per recipient, sequentially; refused while another batch is in flight
// @Tags dispatch
// @Accept json
// @Produce json
// @Param x-wedding-auth-key header string true "Dispatch API key"
// @Param request body StartDispatchRequest true "Resolved content plus recipients"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/dispatch [post]
func (h *DispatchHandler) StartDispatch(c echo.Context) error {
	var req StartDispatchRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	warning := h.dispatcher.BulkLinkWarning(req.Content, len(req.Recipients))

	batchID, err := h.dispatcher.Start(h.appCtx, req.Content, req.Recipients)
	if err != nil {
		if errors.Is(err, service.ErrDispatchInFlight) {
			return response.Conflict(c, err.Error())
		}
		return response.BadRequest(c, err)
	}

	return response.OkWithMessage(c, "Dispatch started", map[string]any{
		"batchId":         batchID,
		"total":           len(req.Recipients),
		"bulkLinkWarning": warning,
	})
}

// GetProgress godoc
// @Summary Get dispatch progress
// @Description Returns the counters of the in-flight or most recent batch
// @Tags dispatch
// @Accept json
// @Produce json
// @Param x-wedding-auth-key header string true "Dispatch API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/dispatch/progress [get]
func (h *DispatchHandler) GetProgress(c echo.Context) error {
	progress, err := h.dispatcher.Progress()
	if err != nil {
		return response.NotFound(c, err.Error())
	}

	return response.Ok(c, progress)
}
