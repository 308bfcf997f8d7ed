package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/utils"
)

// apiTokenService implements the APITokenSvc interface
type apiTokenService struct {
	BaseService
	tokenRepo repositories.APITokenRepository
	userSvc   portssvc.UserSvcFacade
}

// NewAPITokenService creates a new instance of apiTokenService
func NewAPITokenService(tokenRepo repositories.APITokenRepository, userSvc portssvc.UserSvcFacade) portssvc.APITokenSvc {
	return &apiTokenService{
		tokenRepo: tokenRepo,
		userSvc:   userSvc,
	}
}

// CreateToken generates a new API token for the user. The raw token is only returned here.
func (s *apiTokenService) CreateToken(ctx context.Context, userID, name string, expiresIn *time.Duration) (string, *domain.APIToken, error) {
	if userID == "" {
		return "", nil, apperrors.ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, fmt.Errorf("%w: token name is required", apperrors.ErrValidation)
	}

	// The ID is embedded in the raw token so validation is a primary-key lookup
	tokenID := uuid.NewString()
	raw, hash, err := utils.NewAPITokenSecret(tokenID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := s.clock()
	var expiresAt *time.Time
	if expiresIn != nil {
		if *expiresIn <= 0 {
			return "", nil, fmt.Errorf("%w: expiry must be positive", apperrors.ErrValidation)
		}
		expiry := now.Add(*expiresIn)
		expiresAt = &expiry
	}

	apiToken := domain.APIToken{
		ID:        tokenID,
		UserID:    userID,
		Name:      name,
		TokenHash: hash,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tokenRepo.Create(ctx, apiToken); err != nil {
		return "", nil, fmt.Errorf("failed to save token: %w", err)
	}
	s.LogInfo(ctx, "API token created", slog.String("token_id", tokenID))
	return raw, &apiToken, nil
}

// ListTokens returns all API tokens for a user
func (s *apiTokenService) ListTokens(ctx context.Context, userID string) ([]domain.APIToken, error) {
	tokens, err := s.tokenRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}
	if tokens == nil {
		tokens = []domain.APIToken{}
	}
	return tokens, nil
}

// RevokeToken deletes a specific API token for a user
func (s *apiTokenService) RevokeToken(ctx context.Context, userID, tokenID string) error {
	token, err := s.tokenRepo.FindByID(ctx, tokenID)
	if err != nil {
		return err
	}
	// someone else's token looks exactly like a missing one
	if token.UserID != userID {
		return apperrors.ErrNotFound
	}
	if err := s.tokenRepo.Delete(ctx, tokenID, s.clock()); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// RevokeAllTokens deletes all API tokens for a user
func (s *apiTokenService) RevokeAllTokens(ctx context.Context, userID string) error {
	if err := s.tokenRepo.DeleteByUserID(ctx, userID, s.clock()); err != nil {
		return fmt.Errorf("failed to revoke all tokens: %w", err)
	}
	return nil
}

// ValidateToken resolves a raw "bo_<id>.<secret>" token to its user.
func (s *apiTokenService) ValidateToken(ctx context.Context, tokenString string) (*domain.User, error) {
	tokenID, secret, ok := utils.SplitAPIToken(tokenString)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	token, err := s.tokenRepo.FindByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	// Compare against the stored hash; the raw secret is never persisted
	if !utils.CheckAPITokenSecret(secret, token.TokenHash) {
		return nil, apperrors.ErrUnauthorized
	}
	if token.IsExpired() {
		// Clean up on first use after expiry
		if err := s.tokenRepo.Delete(ctx, token.ID, s.clock()); err != nil {
			s.LogError(ctx, err, "Failed to revoke expired API token", slog.String("token_id", token.ID))
		}
		return nil, fmt.Errorf("%w: token has expired", apperrors.ErrUnauthorized)
	}

	// Usage tracking must not fail the request
	if err := s.tokenRepo.TouchLastUsed(ctx, token.ID, s.clock()); err != nil {
		s.LogError(ctx, err, "Failed to record API token use", slog.String("token_id", token.ID))
	}

	// Tokens of deleted users are rejected like unknown ones
	user, err := s.userSvc.GetUserByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
