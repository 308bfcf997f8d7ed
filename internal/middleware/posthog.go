package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/travel_backoffice/internal/platform/analytics"
	"github.com/gin-gonic/gin"
)

// pathsToSkip contains paths that should not be tracked by PostHog
var pathsToSkip = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// PosthogMiddleware creates a Gin middleware handler that tracks API events with PostHog
func PosthogMiddleware(client *analytics.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Analytics disabled, or a health/metrics path: nothing to track
		if !client.IsInitialized() || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		// Let the handler run first so the final status is known
		c.Next()

		// Only successful calls are recorded
		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		// Set by the auth middleware; anonymous calls are not tracked
		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		// "/api/v1/bookings/:bookingID" -> "api_v1_bookings_:bookingID"
		eventName := strings.ReplaceAll(strings.TrimPrefix(c.FullPath(), "/"), "/", "_")
		// Unmatched routes (404s) have no full path
		if eventName == "" {
			return
		}

		props := map[string]any{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
		}
		// Route parameters carry the entity IDs
		if len(c.Params) > 0 {
			params := make(map[string]string, len(c.Params))
			for _, param := range c.Params {
				params[param.Key] = param.Value
			}
			props["params"] = params
		}

		client.Enqueue(userID, eventName, props)
	}
}

// PosthogEvent sends a custom event for the current user from a handler.
func PosthogEvent(c *gin.Context, client *analytics.Client, eventName string, properties map[string]any) {
	if !client.IsInitialized() {
		return
	}
	userID, exists := GetUserIDFromContext(c)
	if !exists {
		return
	}
	if properties == nil {
		properties = make(map[string]any)
	}
	// Request context goes along with every custom event
	properties["method"] = c.Request.Method
	properties["path"] = c.Request.URL.Path
	client.Enqueue(userID, eventName, properties)
}
