package services

import (
	"context"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"
)

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error)
	GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error)
	// ValidateAndParseRefreshToken validates a refresh token string against a user's stored token details.
	// It returns the user if the token is valid and not expired.
	ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error)
}

// GoogleOAuthHandlerSvcFacade defines the interface for Google OAuth operations.
type GoogleOAuthHandlerSvcFacade interface {
	// GetGoogleLoginURL returns the URL to redirect the user to for Google login.
	GetGoogleLoginURL(ctx context.Context, state string) string
	// ExchangeCodeForToken exchanges an OAuth authorization code for a token.
	ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error)
	// ValidateGoogleIDToken validates an ID token string from Google and returns its payload.
	ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error)
}

// AuthSvc issues and rotates sessions.
type AuthSvc interface {
	// Login checks email and password and opens a session.
	Login(ctx context.Context, req dto.LoginRequest) (*dto.Session, error)
	// LoginWithGoogle validates a Google ID token and opens a session for its email.
	LoginWithGoogle(ctx context.Context, idToken string) (*dto.Session, error)
	// ExchangeGoogleCode completes the authorization code flow and opens a session.
	ExchangeGoogleCode(ctx context.Context, code string) (*dto.Session, error)
	// Refresh validates the refresh token and rotates it.
	Refresh(ctx context.Context, userID, refreshToken string) (*dto.Session, error)
	// Logout forgets the user's refresh token.
	Logout(ctx context.Context, userID string) error
}
