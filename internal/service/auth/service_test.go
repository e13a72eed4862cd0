package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hpms-api/internal/model"
	"github.com/jwalitptl/hpms-api/internal/repository"
	"github.com/jwalitptl/hpms-api/internal/repository/memory"
	"github.com/jwalitptl/hpms-api/pkg/auth"
	apperrors "github.com/jwalitptl/hpms-api/pkg/errors"
	"github.com/jwalitptl/hpms-api/pkg/security"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T) (*Service, *repository.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewService(store.Users, store.Tokens, security.NewBcryptHasher(4),
		auth.NewJWTService(testSecret, "hpms-test", time.Hour))
	return svc, store
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &model.CreateUserRequest{Email: "nurse@example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "longenough", user.PasswordHash)

	_, err = svc.Register(ctx, &model.CreateUserRequest{Email: "nurse@example.com", Password: "longenough"})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	_, err = svc.Register(ctx, &model.CreateUserRequest{Email: "x@example.com", Password: "short"})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidFormat))

	_, err = svc.Register(ctx, &model.CreateUserRequest{Email: "y@example.com", Password: "longenough", Role: "superuser"})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidFormat))
}

func TestAuthenticate_IdenticalFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, &model.CreateUserRequest{Email: "doc@example.com", Password: "correct-horse", Role: model.RoleDoctor})
	require.NoError(t, err)

	_, wrongPassword := svc.Authenticate(ctx, "doc@example.com", "battery-staple")
	_, unknownEmail := svc.Authenticate(ctx, "nobody@example.com", "battery-staple")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assert.Equal(t, apperrors.CodeOf(wrongPassword), apperrors.CodeOf(unknownEmail))
	assert.True(t, apperrors.Is(unknownEmail, apperrors.ErrUnauthorized))
}

func TestAuthenticate_ResolveAndLogout(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &model.CreateUserRequest{Email: "admin@example.com", Password: "admin-pass", Role: model.RoleAdmin})
	require.NoError(t, err)

	result, err := svc.Authenticate(ctx, "admin@example.com", "admin-pass")
	require.NoError(t, err)
	assert.Equal(t, "bearer", result.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, 5*time.Second)

	user, err := svc.ResolveIdentity(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, model.RoleAdmin, user.Role)

	require.NoError(t, svc.Logout(ctx, result.AccessToken))

	_, err = svc.ResolveIdentity(ctx, result.AccessToken)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestResolveIdentity_Rejects(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ResolveIdentity(ctx, "garbage")
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))

	// Valid signature but the subject was never registered.
	token, _, err := auth.NewJWTService(testSecret, "hpms-test", time.Hour).
		GenerateAccessToken(auth.Subject{UserID: 42, Email: "ghost@example.com", Role: model.RoleAdmin})
	require.NoError(t, err)
	_, err = svc.ResolveIdentity(ctx, token)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))

	// Signed with another secret.
	token, _, err = auth.NewJWTService("ffffffffffffffffffffffffffffffff", "hpms-test", time.Hour).
		GenerateAccessToken(auth.Subject{UserID: 1, Email: "a@example.com", Role: model.RoleUser})
	require.NoError(t, err)
	_, err = svc.ResolveIdentity(ctx, token)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestRegister_PrivilegedRoleRefusedWhenDisabled(t *testing.T) {
	store := memory.NewStore()
	svc := NewService(store.Users, store.Tokens, security.NewBcryptHasher(4),
		auth.NewJWTService(testSecret, "hpms-test", time.Hour), WithRoleSignup(false))
	ctx := context.Background()

	_, err := svc.Register(ctx, &model.CreateUserRequest{Email: "boss@example.com", Password: "longenough", Role: model.RoleAdmin})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	_, err = store.Users.GetByEmail(ctx, "boss@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	user, err := svc.Register(ctx, &model.CreateUserRequest{Email: "plain@example.com", Password: "longenough", Role: model.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, user.Role)
}
