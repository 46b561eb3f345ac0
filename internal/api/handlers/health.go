package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ReadinessProbe is the store surface /readyz checks.
type ReadinessProbe interface {
	Ping(ctx context.Context) error
	CountSkus(ctx context.Context) (int, error)
}

// ReadyResponse is the /readyz body.
type ReadyResponse struct {
	Status      string `json:"status"`
	CatalogSkus int    `json:"catalog_skus"`
	Reason      string `json:"reason,omitempty"`
}

// HealthHandler provides liveness and readiness endpoints.
type HealthHandler struct {
	store ReadinessProbe
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(s ReadinessProbe) *HealthHandler {
	return &HealthHandler{store: s}
}

// Healthz returns 200 while the process is up.
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 once the database answers and the catalog has at least
// one SKU. Without a catalog every match would come back empty.
func (h *HealthHandler) Readyz(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.store.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, ReadyResponse{
			Status: "unavailable",
			Reason: "database unreachable",
		})
	}

	n, err := h.store.CountSkus(ctx)
	switch {
	case err != nil:
		return c.JSON(http.StatusServiceUnavailable, ReadyResponse{
			Status: "unavailable",
			Reason: "catalog unreadable",
		})
	case n == 0:
		return c.JSON(http.StatusServiceUnavailable, ReadyResponse{
			Status: "unavailable",
			Reason: "catalog is empty",
		})
	}

	return c.JSON(http.StatusOK, ReadyResponse{Status: "ready", CatalogSkus: n})
}
