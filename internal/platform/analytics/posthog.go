// Package analytics wraps the posthog client so callers do not need to care whether it is configured.
package analytics

import (
	"log/slog"

	"github.com/posthog/posthog-go"
)

const posthogEndpoint = "https://eu.i.posthog.com"

// Client enqueues product analytics events. The zero value is a no-op client.
type Client struct {
	posthogClient posthog.Client
	logger        *slog.Logger
}

// NewClient returns a posthog backed client, or a no-op client when apiKey is empty.
func NewClient(apiKey string, logger *slog.Logger) *Client {
	if apiKey == "" {
		logger.Warn("Posthog API key is empty, analytics disabled")
		return &Client{}
	}
	pc, err := posthog.NewWithConfig(apiKey, posthog.Config{Endpoint: posthogEndpoint})
	if err != nil {
		logger.Error("Failed to initialise posthog client, analytics disabled", slog.String("error", err.Error()))
		return &Client{}
	}
	logger.Info("Posthog analytics enabled")
	return &Client{posthogClient: pc, logger: logger}
}

// IsInitialized reports whether events are actually sent.
func (c *Client) IsInitialized() bool {
	return c != nil && c.posthogClient != nil
}

// Enqueue captures an event for distinctID.
func (c *Client) Enqueue(distinctID string, event string, properties map[string]any) {
	if !c.IsInitialized() {
		return
	}
	err := c.posthogClient.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: properties,
	})
	if err != nil && c.logger != nil {
		c.logger.Warn("Failed to enqueue analytics event", slog.String("event", event), slog.String("error", err.Error()))
	}
}

// Close flushes pending events.
func (c *Client) Close() {
	if !c.IsInitialized() {
		return
	}
	if err := c.posthogClient.Close(); err != nil && c.logger != nil {
		c.logger.Warn("Failed to close posthog client", slog.String("error", err.Error()))
	}
}
