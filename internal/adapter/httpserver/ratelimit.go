package httpserver

import (
	"strconv"
	"time"

	apperrors "github.com/guiltyguilty/disturb/internal/platform/errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const (
	connectLimiterExpiry = 5 * time.Minute
	connectRetryAfter    = time.Second
)

// transportForRoute names the push transport served on an upgrade route.
func transportForRoute(path string) string {
	switch path {
	case "/ws":
		return "websocket"
	case "/connection/websocket":
		return "centrifuge"
	default:
		return "unknown"
	}
}

// newConnectLimiter throttles connection attempts per client IP. The gorilla
// and centrifuge routes share one bucket per IP, so alternating between them
// does not double a client's budget. Denials go through the structured error
// middleware as rate_limited.
func newConnectLimiter(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: connectLimiterExpiry,
		},
	)
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			c.Response().Header().Set(echo.HeaderRetryAfter, strconv.Itoa(int(connectRetryAfter.Seconds())))
			return apperrors.RateLimitedError("too many connection attempts").
				WithField("transport", transportForRoute(c.Path()))
		},
	})
}
