package dto

import (
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
)

// CreateAPITokenRequest represents the request body for creating a new API token
type CreateAPITokenRequest struct {
	Name             string `json:"name" binding:"required,min=3,max=100"`
	ExpiresInSeconds *int64 `json:"expiresInSeconds,omitempty" binding:"omitempty,gt=0"`
}

// APITokenResponse represents an API token in the API responses
type APITokenResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// CreateAPITokenResponse represents the response when creating a new API token
type CreateAPITokenResponse struct {
	TokenString string           `json:"token"` // Only shown once when created
	Details     APITokenResponse `json:"details"`
}

// ToAPITokenResponse converts a domain.APIToken to an APITokenResponse
func ToAPITokenResponse(token domain.APIToken) APITokenResponse {
	return APITokenResponse{
		ID:         token.ID,
		Name:       token.Name,
		LastUsedAt: token.LastUsedAt,
		ExpiresAt:  token.ExpiresAt,
		CreatedAt:  token.CreatedAt,
	}
}

// ToAPITokenResponses converts a slice of tokens.
func ToAPITokenResponses(tokens []domain.APIToken) []APITokenResponse {
	out := make([]APITokenResponse, len(tokens))
	for i, t := range tokens {
		out[i] = ToAPITokenResponse(t)
	}
	return out
}
