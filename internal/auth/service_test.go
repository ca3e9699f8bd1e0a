// ABOUTME: Tests for the authentication service
// ABOUTME: Covers registration, login, federated provisioning, and token flow

package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/gatekeeper/internal/provider"
	"github.com/2389/gatekeeper/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.MockStore) {
	t.Helper()
	mock := store.NewMockStore()
	hasher := NewPasswordHasher(4)
	signer, err := NewJWTSigner([]byte("test-secret"), "HS256")
	require.NoError(t, err)
	svc := NewService(mock, hasher, signer, 30*time.Minute, slog.Default())
	return svc, mock
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, user.PasswordHash)
	assert.False(t, user.Federated())

	got, err := svc.Authenticate(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, store.ErrUsernameExists)

	count, err := mock.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	// Unknown users fail with the same error as wrong passwords.
	_, err := svc.Authenticate(context.Background(), "nobody", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateFederatedUserRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.ResolveOrCreate(ctx, provider.Identity{Email: "fed@example.com"})
	require.NoError(t, err)
	require.True(t, user.Federated())

	// A federated-only account has no password; every guess fails,
	// including the empty string.
	_, err = svc.Authenticate(ctx, "fed@example.com", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "fed@example.com", "guess")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolveOrCreateIsIdempotent(t *testing.T) {
	svc, mock := newTestService(t)
	ctx := context.Background()
	identity := provider.Identity{Email: "fed@example.com"}

	first, err := svc.ResolveOrCreate(ctx, identity)
	require.NoError(t, err)

	second, err := svc.ResolveOrCreate(ctx, identity)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	count, err := mock.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestResolveOrCreateKeepsExistingLocalUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// A local user who later signs in through a provider with the same
	// address keeps their record and their password.
	local, err := svc.Register(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)

	resolved, err := svc.ResolveOrCreate(ctx, provider.Identity{Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, local.ID, resolved.ID)
	assert.False(t, resolved.Federated())

	_, err = svc.Authenticate(ctx, "alice@example.com", "s3cret")
	assert.NoError(t, err)
}

func TestCompleteLoginMintsVerifiableToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	token, err := svc.CompleteLogin(ctx, user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLookupUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.LookupUser(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	registered, err := svc.Register(ctx, "alice", "s3cret")
	require.NoError(t, err)

	found, err := svc.LookupUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, found.ID)
}
