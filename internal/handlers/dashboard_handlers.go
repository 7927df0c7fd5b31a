package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"smartinventory/internal/common"
	"smartinventory/internal/models"
)

const (
	dashboardSuccessMessage = "Dashboard data fetched successfully"
	dashboardFailureMessage = "Failed to fetch dashboard data"
)

// DashboardService produces a dashboard snapshot.
type DashboardService interface {
	GetDashboard(ctx context.Context) (*models.DashboardSnapshot, error)
}

// Options controls how server failures are reported to clients.
type Options struct {
	// ExposeErrors writes the underlying cause into error responses.
	// Only enable it for operators, never for public deployments.
	ExposeErrors bool
}

type DashboardHandlers struct {
	service DashboardService
	opts    Options
}

func NewDashboardHandlers(service DashboardService, opts Options) *DashboardHandlers {
	return &DashboardHandlers{service: service, opts: opts}
}

// GetDashboard handles GET /api/analytics/dashboard.
func (h *DashboardHandlers) GetDashboard(c echo.Context) error {
	snap, err := h.service.GetDashboard(c.Request().Context())
	if err != nil {
		return common.SendServerError(c, dashboardFailureMessage, err, h.opts.ExposeErrors)
	}
	return common.SendSuccess(c, http.StatusOK, dashboardSuccessMessage, snap)
}
