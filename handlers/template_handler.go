package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/nemocrk/my-wedding-app/internal/repository"
	"github.com/nemocrk/my-wedding-app/internal/service"
	"github.com/nemocrk/my-wedding-app/pkg/response"
)

type TemplateHandler struct {
	repo      *repository.TemplateRepository
	templates *service.TemplateResolver
}

func NewTemplateHandler(repo *repository.TemplateRepository, templates *service.TemplateResolver) *TemplateHandler {
	return &TemplateHandler{repo: repo, templates: templates}
}

// GetEligibleTemplates godoc
// @Summary List templates usable for manual dispatch
// @Description Returns active manual templates in stable order; status-change templates are excluded
// @Tags templates
// @Accept json
// @Produce json
// @Param x-wedding-auth-key header string true "Dispatch API key"
// @Success 200 {object} response.SuccessResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/v1/templates [get]
func (h *TemplateHandler) GetEligibleTemplates(c echo.Context) error {
	templates, err := h.repo.FetchAll(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, h.templates.ListEligible(templates))
}
