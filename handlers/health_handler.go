package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	"github.com/nemocrk/my-wedding-app/internal/realtime"
	"github.com/nemocrk/my-wedding-app/pkg/cache"
)

// HealthHandler handles health checks.
type HealthHandler struct {
	db           *sqlx.DB
	cache        *cache.Client
	bridge       *realtime.Bridge
	checkTimeout time.Duration
}

func NewHealthHandler(db *sqlx.DB, cacheClient *cache.Client, bridge *realtime.Bridge) *HealthHandler {
	return &HealthHandler{
		db:           db,
		cache:        cacheClient,
		bridge:       bridge,
		checkTimeout: 2 * time.Second,
	}
}

// Health returns overall status and component statuses (DB, link cache,
// realtime bridge).
// @Summary Health check
// @Description Returns overall status with database, cache and realtime bridge states
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	overallStatus := "ok"

	dbStatus := "up"
	if h.db == nil {
		dbStatus = "down"
		overallStatus = "down"
	} else if err := h.db.PingContext(ctx); err != nil {
		dbStatus = "down"
		overallStatus = "down"
	}

	cacheStatus := "disabled"
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			cacheStatus = "down"
			overallStatus = "degraded"
		} else {
			cacheStatus = "up"
		}
	}

	bridgeStatus := realtime.StateDisconnected
	if h.bridge != nil {
		bridgeStatus = h.bridge.State()
	}
	if bridgeStatus == realtime.StateError && overallStatus == "ok" {
		overallStatus = "degraded"
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().Format(time.RFC3339),
		"components": map[string]any{
			"database": map[string]any{
				"status": dbStatus,
			},
			"cache": map[string]any{
				"status": cacheStatus,
			},
			"bridge": map[string]any{
				"status": bridgeStatus,
			},
		},
	})
}
