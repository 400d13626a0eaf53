package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finanzas-be/internal/apperrors"
	"finanzas-be/internal/cache"
	"finanzas-be/internal/jwt"
	"finanzas-be/internal/models"
	"finanzas-be/internal/session"
)

func newTestAuthService(t *testing.T) (AuthService, UserService) {
	t.Helper()
	users := newTestUserService(newFakeStore())
	mem := cache.NewMemoryCache()
	t.Cleanup(func() { _ = mem.Close() })
	sessions := session.NewStore(mem)
	tokens := jwt.NewJWTService("test-secret-with-enough-bytes-000", time.Hour)
	return NewAuthService(users, sessions, tokens, testLogger), users
}

func TestAuthService_RegisterLogsIn(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuthService(t)

	resp, err := auth.Register(ctx, &models.RegisterRequest{
		Username: "ana", Email: "ana@example.com", Password: "secreto123", FullName: "Ana",
	})
	require.NoError(t, err)
	assert.Equal(t, "User registered successfully", resp.Message)
	assert.NotEmpty(t, resp.Auth.Token)
	assert.Equal(t, "ana", resp.Auth.User.Username)

	p, err := auth.Authorize(ctx, resp.Auth.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.Auth.User.ID, p.UserID)

	_, err = auth.Register(ctx, &models.RegisterRequest{
		Username: "ana", Email: "otra@example.com", Password: "secreto123",
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestAuthService_LoginLogoutAuthorize(t *testing.T) {
	ctx := context.Background()
	auth, users := newTestAuthService(t)

	_, err := users.Register(ctx, "ana", "ana@example.com", "secreto123", "")
	require.NoError(t, err)

	_, err = auth.Login(ctx, &models.LoginRequest{UsernameOrEmail: "ana", Password: "equivocado"})
	require.ErrorIs(t, err, apperrors.ErrAuthentication)

	first, err := auth.Login(ctx, &models.LoginRequest{UsernameOrEmail: "ana@example.com", Password: "secreto123"})
	require.NoError(t, err)
	require.NotNil(t, first.User.LastLoginAt)

	second, err := auth.Login(ctx, &models.LoginRequest{UsernameOrEmail: "ana", Password: "secreto123"})
	require.NoError(t, err)

	p1, err := auth.Authorize(ctx, first.Token)
	require.NoError(t, err)
	p2, err := auth.Authorize(ctx, second.Token)
	require.NoError(t, err)
	assert.NotEqual(t, p1.Session.ID, p2.Session.ID)

	info, err := auth.Session(ctx, p1)
	require.NoError(t, err)
	assert.Equal(t, p1.Session.ID, info.SessionID)
	assert.Equal(t, "ana", info.User.Username)

	require.NoError(t, auth.Logout(ctx, p1.Session.ID))

	_, err = auth.Authorize(ctx, first.Token)
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)
	_, err = auth.Authorize(ctx, second.Token)
	assert.NoError(t, err, "other sessions stay valid")
}

func TestAuthService_AuthorizeRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuthService(t)

	_, err := auth.Authorize(ctx, "not.a.jwt")
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)

	forged, err := jwt.NewJWTService("another-secret-with-enough-bytes", time.Hour).GenerateToken("u1", "s1")
	require.NoError(t, err)
	_, err = auth.Authorize(ctx, forged)
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)

	// Correct signature but no live session behind it.
	orphan, err := jwt.NewJWTService("test-secret-with-enough-bytes-000", time.Hour).GenerateToken("u1", "s1")
	require.NoError(t, err)
	_, err = auth.Authorize(ctx, orphan)
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)
}

func TestAuthService_AuthorizeRejectsDeactivatedUser(t *testing.T) {
	ctx := context.Background()
	auth, users := newTestAuthService(t)

	resp, err := auth.Register(ctx, &models.RegisterRequest{
		Username: "ana", Email: "ana@example.com", Password: "secreto123",
	})
	require.NoError(t, err)
	other, err := auth.Login(ctx, &models.LoginRequest{UsernameOrEmail: "ana", Password: "secreto123"})
	require.NoError(t, err)

	require.NoError(t, users.Deactivate(ctx, resp.Auth.User.ID))

	for _, token := range []string{resp.Auth.Token, other.Token} {
		p, err := auth.Authorize(ctx, token)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, apperrors.ErrAuthentication)
	}

	// Reactivating does not resurrect sessions revoked while inactive.
	require.NoError(t, users.Activate(ctx, resp.Auth.User.ID))
	_, err = auth.Authorize(ctx, other.Token)
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)
}
