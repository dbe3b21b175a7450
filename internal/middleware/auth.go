package middleware

import (
	"context"
	"net/http"
	"strings"

	"notes-service/pkg/errs"
	"notes-service/pkg/jwtutil"
	"notes-service/pkg/logger"
	"notes-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const identityKey = "identity"

// SessionResolver turns a bearer token into a verified identity
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (jwtutil.Identity, error)
}

// Auth validates the bearer token from the Authorization header and
// stores the resolved identity on the context.
func Auth(sessions SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
				log.Warn("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Authentication required"})
			}

			identity, err := sessions.Resolve(c.Request().Context(), strings.TrimSpace(token))
			if err != nil {
				if errs.CodeOf(err) != errs.Authentication {
					log.Error("Failed to resolve session", zap.Error(err))
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
				}
				log.Warn("Rejected session token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				e, _ := errs.As(err)
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": e.Message})
			}

			c.Set(identityKey, identity)
			c.SetRequest(c.Request().WithContext(logger.WithContext(
				c.Request().Context(),
				log.With(zap.String("user_id", identity.UserID), zap.String("tenant_id", identity.TenantID)),
			)))
			return next(c)
		}
	}
}

// IdentityFrom returns the identity stored by Auth
func IdentityFrom(c echo.Context) (jwtutil.Identity, bool) {
	id, ok := c.Get(identityKey).(jwtutil.Identity)
	return id, ok
}
