package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware creates a Gin middleware handler that validates JWT access tokens.
// Requests already authenticated by APITokenAuth pass straight through.
func AuthMiddleware(jwtSecret, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := GetLoggerFromCtx(c.Request.Context())
		// if auth is already done, skip this middleware
		if isAuthenticated(c) {
			c.Next()
			return
		}

		tokenString, ok := bearerToken(c)
		if !ok {
			logger.Warn("Authorization header missing or malformed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}"})
			return
		}

		claims, err := utils.ParseAndValidateJWT(tokenString, jwtSecret, issuer)
		if err != nil {
			logger.Warn("Invalid token", slog.String("error", err.Error()))
			msg := "Invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "Token has expired"
			} else if errors.Is(err, jwt.ErrTokenNotValidYet) {
				msg = "Token not valid yet"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		// A missing or unknown role claim gets the least privileged role
		role := domain.Role(claims.Role)
		if !role.IsValid() {
			role = domain.RoleAgent
		}
		setIdentity(c, claims.Subject, role, AuthMethodJWT)
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a valid access token is present and lets
// anonymous requests through otherwise.
func OptionalAuthMiddleware(jwtSecret, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isAuthenticated(c) {
			c.Next()
			return
		}
		// A bad token is treated like no token here
		if tokenString, ok := bearerToken(c); ok {
			if claims, err := utils.ParseAndValidateJWT(tokenString, jwtSecret, issuer); err == nil {
				setIdentity(c, claims.Subject, domain.Role(claims.Role), AuthMethodJWT)
			}
		}
		c.Next()
	}
}

// RequireRole aborts with 403 unless the caller's role grants at least required.
func RequireRole(required domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if !role.AtLeast(required) {
			GetLoggerFromCtx(c.Request.Context()).Warn("Role check failed",
				slog.String("role", string(role)), slog.String("required", string(required)))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient role for this operation"})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Fields(c.GetHeader("Authorization"))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}
