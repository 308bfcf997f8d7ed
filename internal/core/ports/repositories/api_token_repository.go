package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
)

// APITokenRepository defines the interface for API token data access operations
type APITokenRepository interface {
	// Create persists a new API token
	Create(ctx context.Context, token domain.APIToken) error

	// FindByID retrieves a live API token by its ID
	FindByID(ctx context.Context, id string) (*domain.APIToken, error)

	// FindByUserID retrieves all live API tokens for a specific user
	FindByUserID(ctx context.Context, userID string) ([]domain.APIToken, error)

	// TouchLastUsed records that the token was just used
	TouchLastUsed(ctx context.Context, id string, at time.Time) error

	// Delete soft deletes an API token
	Delete(ctx context.Context, id string, at time.Time) error

	// DeleteByUserID soft deletes all API tokens of a user
	DeleteByUserID(ctx context.Context, userID string, at time.Time) error
}
