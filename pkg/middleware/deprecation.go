package middleware

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Deprecated marks every response of the wrapped routes with "Deprecation: true" and, when
// successor is set, a Link to the replacement.
func Deprecated(successor string, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Deprecation", "true")
			if successor != "" {
				h.Set("Link", "<"+successor+">; rel=\"successor-version\"")
			}
			if logger != nil {
				logger.Info("deprecated endpoint called",
					zap.String("path", c.Path()),
					zap.Any("user_id", c.Get("user_id")),
				)
			}
			return next(c)
		}
	}
}
