package middleware

import (
	stdErrors "errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-quality/errors"
	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
	"github.com/johnquangdev/meeting-quality/pkg/jwt"
)

// Echo context keys set by EchoAuth
const (
	ContextUserID   = "user_id"
	ContextEmail    = "email"
	ContextFullName = "full_name"
)

// TokenValidator verifies access tokens
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// EchoAuth validates the bearer token and sets user_id (uuid.UUID), email and full_name
// into the echo context.
func EchoAuth(validator TokenValidator, logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ExtractToken(c.Request())
			if token == "" {
				return errors.ErrUnauthenticated()
			}

			claims, err := validator.ValidateAccessToken(token)
			if err != nil {
				logger.Debug("rejected access token",
					zap.String("path", c.Path()),
					zap.Error(err),
				)
				if stdErrors.Is(err, jwt.ErrExpired) {
					return errors.ErrTokenExpired()
				}
				return errors.ErrInvalidToken()
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextEmail, claims.Email)
			c.Set(ContextFullName, claims.FullName)
			return next(c)
		}
	}
}

// IdentityFrom builds the caller identity from claims.
func IdentityFrom(claims *jwt.Claims) entities.Identity {
	return entities.Identity{
		UserID:   claims.UserID,
		FullName: claims.FullName,
		Email:    claims.Email,
	}
}

// ExtractToken reads "Authorization: Bearer <token>", falling back to the access_token cookie.
func ExtractToken(r *http.Request) string {
	if token := BearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}
	return ""
}

// BearerToken strips a case-insensitive "Bearer " prefix.
func BearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
