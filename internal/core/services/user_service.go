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
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/utils"
	"github.com/SscSPs/travel_backoffice/internal/utils/pagination"
)

// userService implements portssvc.UserSvcFacade.
type userService struct {
	BaseService
	userRepo  portsrepo.UserRepositoryFacade
	tokenRepo portsrepo.APITokenRepository
}

// NewUserService creates a new user service. tokenRepo may be nil, in which case deleting a user
// leaves their API tokens untouched.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, tokenRepo portsrepo.APITokenRepository, auditRepo portsrepo.AuditRepository) portssvc.UserSvcFacade {
	return &userService{
		BaseService: BaseService{AuditRepo: auditRepo},
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
}

func (s *userService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.userRepo.FindUsers(ctx, pagination.NormalizeLimit(limit, 20, 100), max(offset, 0))
	if err != nil {
		s.LogError(ctx, err, "Failed to list users")
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// RegisterUser creates a local account. The first account bootstraps the system as ADMIN.
func (s *userService) RegisterUser(ctx context.Context, req dto.RegisterRequest, requestingUserID string) (*domain.User, error) {
	count, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	role := req.Role
	if role == "" {
		role = domain.RoleAgent
	}
	createdBy := requestingUserID
	if count == 0 {
		role = domain.RoleAdmin
	} else {
		if requestingUserID == "" {
			return nil, apperrors.ErrUnauthorized
		}
		requester, err := s.userRepo.FindUserByID(ctx, requestingUserID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.ErrUnauthorized
			}
			return nil, err
		}
		if requester.Role != domain.RoleAdmin {
			return nil, fmt.Errorf("%w: only admins can register users", apperrors.ErrForbidden)
		}
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, role)
	}

	email := normalizeEmail(req.Email)
	if _, err := s.userRepo.FindUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email is already registered", apperrors.ErrDuplicate)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	userID := uuid.NewString()
	if createdBy == "" {
		createdBy = userID
	}
	user := domain.User{
		UserID:       userID,
		Email:        email,
		Name:         strings.TrimSpace(req.Name),
		Role:         role,
		AuthProvider: domain.AuthProviderLocal,
		PasswordHash: hash,
		AuditFields:  domain.NewAuditFields(createdBy, s.clock()),
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		s.LogError(ctx, err, "Failed to save user")
		return nil, err
	}
	if err := s.Audit(ctx, domain.EntityUser, user.UserID, domain.AuditCreate, createdBy, dto.ToUserResponse(&user)); err != nil {
		s.LogError(ctx, err, "Failed to audit user registration")
	}
	s.LogInfo(ctx, "User registered", slog.String("user_id", user.UserID), slog.String("role", string(user.Role)))
	return &user, nil
}

// FindOrCreateOAuthUser returns the account for email, creating an AGENT on first sign-in.
func (s *userService) FindOrCreateOAuthUser(ctx context.Context, email, name, provider string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", apperrors.ErrValidation)
	}
	existing, err := s.userRepo.FindUserByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	count, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	role := domain.RoleAgent
	if count == 0 {
		role = domain.RoleAdmin
	}
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	userID := uuid.NewString()
	user := domain.User{
		UserID:       userID,
		Email:        email,
		Name:         name,
		Role:         role,
		AuthProvider: provider,
		AuditFields:  domain.NewAuditFields(userID, s.clock()),
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		s.LogError(ctx, err, "Failed to save OAuth user")
		return nil, err
	}
	s.LogInfo(ctx, "User created from OAuth sign-in",
		slog.String("user_id", user.UserID),
		slog.String("provider", provider))
	return &user, nil
}

// UpdateUser changes a user's name and, for admins, role. Users may rename themselves.
func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	requester, err := s.userRepo.FindUserByID(ctx, requestingUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if requester.UserID != userID && requester.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can update other users", apperrors.ErrForbidden)
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidation)
		}
		user.Name = name
	}
	if req.Role != nil && *req.Role != user.Role {
		if requester.Role != domain.RoleAdmin {
			return nil, fmt.Errorf("%w: only admins can change roles", apperrors.ErrForbidden)
		}
		if !req.Role.IsValid() {
			return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, *req.Role)
		}
		if requester.UserID == userID {
			return nil, fmt.Errorf("%w: admins cannot change their own role", apperrors.ErrValidation)
		}
		user.Role = *req.Role
	}
	user.Touch(requestingUserID, s.clock())

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		s.LogError(ctx, err, "Failed to update user", slog.String("user_id", userID))
		return nil, err
	}
	if err := s.Audit(ctx, domain.EntityUser, userID, domain.AuditUpdate, requestingUserID, req); err != nil {
		s.LogError(ctx, err, "Failed to audit user update")
	}
	return user, nil
}

func (s *userService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, refreshTokenExpiryTime time.Time) error {
	return s.userRepo.UpdateRefreshToken(ctx, userID, refreshTokenHash, refreshTokenExpiryTime)
}

func (s *userService) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.userRepo.ClearRefreshToken(ctx, userID)
}

// DeleteUser soft deletes a user, ends their session and revokes their API tokens.
func (s *userService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	if userID == requestingUserID {
		return fmt.Errorf("%w: you cannot delete your own account", apperrors.ErrValidation)
	}
	if _, err := s.userRepo.FindUserByID(ctx, userID); err != nil {
		return err
	}
	now := s.clock()
	if err := s.userRepo.MarkUserDeleted(ctx, userID, now, requestingUserID); err != nil {
		s.LogError(ctx, err, "Failed to delete user", slog.String("user_id", userID))
		return err
	}
	if err := s.userRepo.ClearRefreshToken(ctx, userID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to clear refresh token of deleted user", slog.String("user_id", userID))
	}
	if s.tokenRepo != nil {
		if err := s.tokenRepo.DeleteByUserID(ctx, userID, now); err != nil {
			s.LogError(ctx, err, "Failed to revoke API tokens of deleted user", slog.String("user_id", userID))
		}
	}
	if err := s.Audit(ctx, domain.EntityUser, userID, domain.AuditDelete, requestingUserID, nil); err != nil {
		s.LogError(ctx, err, "Failed to audit user deletion")
	}
	s.LogInfo(ctx, "User deleted", slog.String("user_id", userID))
	return nil
}

// AuthenticateUser checks a local account's password. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *userService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if user.PasswordHash == "" || !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.LogDebug(ctx, "Password check failed", slog.String("user_id", user.UserID))
		return nil, apperrors.ErrUnauthorized
	}
	return user, nil
}
