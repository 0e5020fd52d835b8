package middleware

import (
	"log/slog"
	"strings"

	deliverycontext "piquante/internal/delivery/context"
	domainerrors "piquante/internal/domain/errors"
	"piquante/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	slogecho "github.com/samber/slog-echo"
)

// AuthMiddleware provides middleware for session token authentication.
type AuthMiddleware struct {
	tokenSvc service.TokenService
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc}
}

// Authenticate validates the bearer token and stores the caller's user ID.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return domainerrors.ErrTokenInvalid.WithDetails("authorization header is missing")
		}

		scheme, tokenString, found := strings.Cut(authHeader, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenString) == "" {
			return domainerrors.ErrTokenInvalid.WithDetails("authorization header must be a Bearer token")
		}

		claims, err := m.tokenSvc.ValidateToken(strings.TrimSpace(tokenString))
		if err != nil {
			return errors.WithStack(err)
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			return domainerrors.ErrTokenInvalid.WithDetails("invalid user ID in token")
		}

		deliverycontext.SetUserID(c, userID)
		slogecho.AddCustomAttributes(c, slog.String("user_id", userID.String()))

		return next(c)
	}
}
