package middleware

import (
	"context"
	"log/slog"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// contextKey is a private type for values stored in the request context.
// Using a custom type prevents collisions.
type contextKey string

const (
	loggerCtxKey  = contextKey("logger")
	userIDKey     = contextKey("userID")
	userRoleKey   = contextKey("userRole")
	authMethodKey = contextKey("authMethod")
)

const (
	AuthMethodJWT      = "jwt"
	AuthMethodAPIToken = "api_token"
)

// GetLoggerFromCtx retrieves the request-scoped logger from a standard context.
// It returns the default logger if none is found.
func GetLoggerFromCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.Default()
	}
	if logger, ok := ctx.Value(loggerCtxKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// WithLogger returns a copy of ctx carrying logger. Used by background jobs and the CLI.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

// GetUserIDFromContext retrieves the authenticated user ID from the Gin context.
// It returns the user ID and a boolean indicating if it was found.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	if userID, ok := c.Request.Context().Value(userIDKey).(string); ok && userID != "" {
		return userID, true
	}
	return "", false
}

// GetUserRoleFromContext retrieves the authenticated user's role.
func GetUserRoleFromContext(c *gin.Context) (domain.Role, bool) {
	role, ok := c.Request.Context().Value(userRoleKey).(domain.Role)
	return role, ok
}

// isAuthenticated reports whether an earlier middleware already identified the caller.
func isAuthenticated(c *gin.Context) bool {
	method, ok := c.Request.Context().Value(authMethodKey).(string)
	return ok && method != ""
}

// setIdentity stores the caller in the request context and enriches the request logger.
func setIdentity(c *gin.Context, userID string, role domain.Role, method string) {
	ctx := c.Request.Context()
	logger := GetLoggerFromCtx(ctx).With(slog.String("user_id", userID))

	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, userRoleKey, role)
	ctx = context.WithValue(ctx, authMethodKey, method)
	ctx = context.WithValue(ctx, loggerCtxKey, logger)
	c.Request = c.Request.WithContext(ctx)
}

// WithIdentity returns ctx carrying an authenticated user. Handler tests use it to fake the
// auth middleware.
func WithIdentity(ctx context.Context, userID string, role domain.Role) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, userRoleKey, role)
	return context.WithValue(ctx, authMethodKey, AuthMethodJWT)
}
