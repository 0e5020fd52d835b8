package middleware

import (
	"log/slog"
	"math"
	"strconv"

	deliverycontext "piquante/internal/delivery/context"
	domainerrors "piquante/internal/domain/errors"
	"piquante/internal/domain/service"

	"github.com/labstack/echo/v4"
)

// LoginLimitMiddleware throttles login attempts per client IP.
type LoginLimitMiddleware struct {
	limiter service.LoginLimiter
	logger  *slog.Logger
}

// NewLoginLimitMiddleware creates the login throttle.
func NewLoginLimitMiddleware(limiter service.LoginLimiter, logger *slog.Logger) *LoginLimitMiddleware {
	return &LoginLimitMiddleware{limiter: limiter, logger: logger}
}

// Limit counts the attempt before the handler runs. Throttled requests never reach
// the credential check. When the limiter backend fails, the request is let through.
func (m *LoginLimitMiddleware) Limit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.RealIP()
		logger := deliverycontext.GetLoggerOrDefault(c.Request().Context(), m.logger)

		decision, err := m.limiter.Allow(c.Request().Context(), key)
		if err != nil {
			logger.Error("Login limiter unavailable", slog.Any("error", err))

			return next(c)
		}

		if !decision.Allowed {
			seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
			logger.Warn("Login throttled", slog.String("client", key), slog.Int("retryAfterSeconds", seconds))

			return domainerrors.ErrTooManyAttempts
		}

		c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))

		return next(c)
	}
}
