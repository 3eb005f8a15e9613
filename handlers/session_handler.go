package handlers

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/nemocrk/my-wedding-app/internal/domain"
	"github.com/nemocrk/my-wedding-app/internal/realtime"
	"github.com/nemocrk/my-wedding-app/pkg/response"
)

// sessionStatusClient is the slice of the gateway client this handler
// needs.
type sessionStatusClient interface {
	SessionStatus(ctx context.Context, session domain.SessionType) (string, error)
}

type SessionHandler struct {
	gateway sessionStatusClient
	bridge  *realtime.Bridge
}

func NewSessionHandler(gateway sessionStatusClient, bridge *realtime.Bridge) *SessionHandler {
	return &SessionHandler{gateway: gateway, bridge: bridge}
}

// GetSessionsStatus godoc
// @Summary Get sender session status
// @Description Reports the gateway-side state of both sender accounts and the realtime bridge
// @Tags sessions
// @Accept json
// @Produce json
// @Param x-wedding-auth-key header string true "Dispatch API key"
// @Success 200 {object} response.SuccessResponse
// @Router /api/v1/sessions/status [get]
func (h *SessionHandler) GetSessionsStatus(c echo.Context) error {
	ctx := c.Request().Context()

	sessions := map[string]string{}
	for _, session := range []domain.SessionType{domain.SessionGroom, domain.SessionBride} {
		status, err := h.gateway.SessionStatus(ctx, session)
		if err != nil {
			status = "unreachable"
		}
		sessions[string(session)] = status
	}

	return response.Ok(c, map[string]any{
		"sessions": sessions,
		"bridge":   h.bridge.State(),
	})
}
