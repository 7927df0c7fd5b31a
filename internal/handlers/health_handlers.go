package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"smartinventory/pkg/logger"
)

const readinessTimeout = 3 * time.Second

// Pinger is implemented by every dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandlers handles liveness and readiness probes.
type HealthHandlers struct {
	db    Pinger
	cache Pinger
	now   func() time.Time
}

func NewHealthHandlers(db Pinger, cache Pinger) *HealthHandlers {
	return &HealthHandlers{db: db, cache: cache, now: time.Now}
}

// HealthStatus is the readiness report.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// LivenessCheck reports that the process is serving requests. It never
// touches a dependency.
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck pings the database pool and redis. Either failing makes
// the instance not ready.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessTimeout)
	defer cancel()

	health := &HealthStatus{
		Status:    "ready",
		Timestamp: h.now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
	}

	check := func(name string, p Pinger) {
		if p == nil {
			health.Services[name] = "disabled"
			return
		}
		if err := p.Ping(ctx); err != nil {
			logger.L().Warn("readiness check failed", zap.String("service", name), zap.Error(err))
			health.Services[name] = "unhealthy"
			health.Status = "not_ready"
			return
		}
		health.Services[name] = "healthy"
	}
	check("database", h.db)
	check("redis", h.cache)

	status := http.StatusOK
	if health.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, health)
}
