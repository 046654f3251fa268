package httpserver

import (
	"github.com/guiltyguilty/disturb/internal/platform/correlation"
	"github.com/labstack/echo/v4"
)

// correlationMiddleware tags each request context with a fresh correlation ID
// so every log line for the request can be grouped.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := correlation.WithID(c.Request().Context(), correlation.NewScopedID(correlation.ScopeRequest))
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
