package middleware

import (
	"log/slog"

	"piquante/config"

	"github.com/labstack/echo/v4"
	slogecho "github.com/samber/slog-echo"
)

// NewLoggerMiddleware builds the access log middleware on top of slog-echo.
// Health probes are skipped, and request/response bodies are never logged
// since they carry passwords and tokens.
func NewLoggerMiddleware(logger *slog.Logger, cfg *config.Config) echo.MiddlewareFunc {
	return slogecho.NewWithConfig(logger, slogecho.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
		WithUserAgent:    cfg.Env.Debug,
		Filters: []slogecho.Filter{
			slogecho.IgnorePath("/health"),
		},
	})
}
