package middleware

import (
	"github.com/labstack/echo/v4"
)

const APIVersion = "v1"

// VersionHeader adds the API version to every response of the group it is
// attached to.
func VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-API-Version", version)
			return next(c)
		}
	}
}
