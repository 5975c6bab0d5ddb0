package middleware

import (
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/kestrelworks/hourglass/internal/apperror"
)

// RequireAPIKey returns middleware that authenticates requests via a bearer
// API key verified against a bcrypt hash from configuration. When no hash
// is configured the server runs open, which is the normal mode for a
// single-GM deployment behind a private network.
func RequireAPIKey(keyHash string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if keyHash == "" {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return apperror.NewUnauthorized("api key required")
			}

			rawKey := strings.TrimPrefix(authHeader, "Bearer ")
			if rawKey == authHeader {
				// No "Bearer " prefix found.
				return apperror.NewUnauthorized("invalid authorization format, use: Bearer <key>")
			}

			if err := bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(rawKey)); err != nil {
				slog.Warn("api key rejected", slog.String("remote_ip", c.RealIP()))
				return apperror.NewUnauthorized("invalid api key")
			}

			return next(c)
		}
	}
}
