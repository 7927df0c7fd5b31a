package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"smartinventory/internal/common"
	"smartinventory/pkg/logger"
)

const rateLimitWindow = time.Minute

// Limiter counts hits per key over a fixed window.
type Limiter interface {
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit allows perMinute requests per client IP. A zero limit disables
// it. When the limiter is unavailable requests are let through.
func RateLimit(limiter Limiter, perMinute int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if limiter == nil || perMinute <= 0 {
			return next
		}

		return func(c echo.Context) error {
			limited, err := limiter.IsRateLimited(c.Request().Context(), c.RealIP(), perMinute, rateLimitWindow)
			if err != nil {
				logger.L().Warn("rate limiter unavailable", zap.Error(err))
				return next(c)
			}
			if limited {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(rateLimitWindow.Seconds())))
				return common.SendError(c, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded")
			}
			return next(c)
		}
	}
}
