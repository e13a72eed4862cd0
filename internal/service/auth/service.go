package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/repository"
	"github.com/jwalitptl/hpms-api/pkg/auth"
	apperrors "github.com/jwalitptl/hpms-api/pkg/errors"
	"github.com/jwalitptl/hpms-api/pkg/security"
)

const (
	invalidCredentials  = "invalid email or password"
	invalidTokenMessage = "could not validate credentials"
	defaultTokenType    = "bearer"
)

type Service struct {
	users      repository.UserRepository
	tokens     repository.TokenRepository
	hasher     security.PasswordHasher
	jwtSvc     auth.JWTService
	roleSignup bool
}

type Option func(*Service)

// WithRoleSignup controls whether Register honours a requested role other
// than user. It is allowed unless disabled.
func WithRoleSignup(allowed bool) Option {
	return func(s *Service) {
		s.roleSignup = allowed
	}
}

func NewService(users repository.UserRepository, tokens repository.TokenRepository,
	hasher security.PasswordHasher, jwtSvc auth.JWTService, opts ...Option) *Service {
	s := &Service{
		users:      users,
		tokens:     tokens,
		hasher:     hasher,
		jwtSvc:     jwtSvc,
		roleSignup: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validRole(role string) bool {
	for _, r := range model.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Register creates a user with a hashed password. The role defaults to user.
func (s *Service) Register(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	email := strings.TrimSpace(req.Email)
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if !validRole(role) {
		return nil, apperrors.InvalidFormat("role", "role must be one of admin, doctor, nurse, user", nil)
	}
	if role != model.RoleUser && !s.roleSignup {
		return nil, apperrors.Forbidden("registration may only assign the user role")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.StoreUnavailable(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	switch {
	case errors.Is(err, security.ErrPasswordTooShort):
		return nil, apperrors.InvalidFormat("password", "password must be at least 8 characters", err)
	case errors.Is(err, security.ErrPasswordTooLong):
		return nil, apperrors.InvalidFormat("password", "password must be at most 72 bytes", err)
	case err != nil:
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("email already registered")
		}
		return nil, apperrors.StoreUnavailable(err)
	}

	log.Info().Int64("user_id", user.ID).Str("role", user.Role).Msg("user registered")
	return user, nil
}

// Authenticate checks credentials and issues an access token. Unknown email
// and wrong password fail identically.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*model.AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.StoreUnavailable(err)
		}
		s.hasher.CompareDummy(password)
		return nil, apperrors.Unauthorized(invalidCredentials, nil)
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, apperrors.Unauthorized(invalidCredentials, nil)
	}

	token, claims, err := s.jwtSvc.GenerateAccessToken(auth.Subject{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	return &model.AuthResult{
		AccessToken: token,
		TokenType:   defaultTokenType,
		ExpiresAt:   claims.ExpiresAt.Time,
		User:        user,
	}, nil
}

func (s *Service) claims(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperrors.Unauthorized(invalidTokenMessage, err)
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	if revoked {
		return nil, apperrors.Unauthorized(invalidTokenMessage, nil)
	}
	return claims, nil
}

// ResolveIdentity returns the user a token was issued to.
func (s *Service) ResolveIdentity(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.claims(ctx, token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.Unauthorized(invalidTokenMessage, err)
		}
		return nil, apperrors.StoreUnavailable(err)
	}
	if claims.UserID != 0 && claims.UserID != user.ID {
		return nil, apperrors.Unauthorized(invalidTokenMessage, nil)
	}
	return user, nil
}

// Logout revokes token until it would have expired.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.claims(ctx, token)
	if err != nil {
		return err
	}
	if err := s.tokens.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return apperrors.StoreUnavailable(err)
	}
	log.Info().Int64("user_id", claims.UserID).Msg("token revoked")
	return nil
}
