package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/voxtag/internal/auth"
	"github.com/satriahrh/voxtag/internal/session"
	"github.com/satriahrh/voxtag/usecase"
)

const (
	contextSessionID = "session_id"
	contextRegistry  = "registry"
)

// requireSession validates the bearer token and resolves the session registry.
// The token may also arrive as ?token= on the websocket upgrade.
func requireSession(issuer *auth.TokenIssuer, sessions *session.Manager, logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get("Authorization"))
			if token == "" {
				token = c.QueryParam("token")
			}
			if token == "" {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "missing_token",
					Message: "JWT token is required in Authorization header",
				})
			}

			claims, err := issuer.ValidateToken(token)
			if err != nil {
				logger.Warn("Request rejected: invalid token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "invalid_token",
					Message: "Invalid or expired JWT token",
				})
			}

			registry, err := sessions.Get(claims.SessionID)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Error:   "session_expired",
					Message: "Session no longer exists",
				})
			}

			c.Set(contextSessionID, claims.SessionID)
			c.Set(contextRegistry, registry)
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func sessionID(c echo.Context) string {
	id, _ := c.Get(contextSessionID).(string)
	return id
}

func registry(c echo.Context) *usecase.Registry {
	r, _ := c.Get(contextRegistry).(*usecase.Registry)
	return r
}
