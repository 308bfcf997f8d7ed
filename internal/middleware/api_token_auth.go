package middleware

import (
	"log/slog"
	"strings"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// APITokenAuth is a middleware that authenticates requests using API tokens, sent either in the
// x-api-key header or as "Authorization: Bearer bo_...". Requests without one, or with an invalid
// one, continue unauthenticated so AuthMiddleware can answer them.
func APITokenAuth(tokenSvc services.APITokenSvc) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("x-api-key")
		if raw == "" {
			// Bearer values without the token prefix are JWTs and belong to AuthMiddleware
			if bearer, ok := bearerToken(c); ok && strings.HasPrefix(bearer, domain.APITokenPrefix) {
				raw = bearer
			}
		}
		if raw == "" {
			c.Next() // no API token, let JWT auth decide
			return
		}

		user, err := tokenSvc.ValidateToken(c.Request.Context(), raw)
		if err != nil {
			GetLoggerFromCtx(c.Request.Context()).Warn("API token rejected", slog.String("error", err.Error()))
			c.Next() // validation failed, let it continue
			return
		}

		// Token is valid: record the identity so AuthMiddleware skips JWT parsing
		setIdentity(c, user.UserID, user.Role, AuthMethodAPIToken)
		c.Next()
	}
}
