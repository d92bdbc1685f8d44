package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"StockPulse/internal/service/ratelimit"
)

// RateLimit returns an echo middleware enforcing a per-client token bucket.
// Clients are keyed by real IP.
func RateLimit(limiter *ratelimit.Limiter, burst float64, rps float64) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow(c.RealIP(), burst, rps) {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"status":  http.StatusTooManyRequests,
					"message": "rate limit exceeded",
				})
			}
			return next(c)
		}
	}
}
