// ABOUTME: Authentication service unifying local and federated login paths
// ABOUTME: Register, authenticate, provision federated users, and mint session tokens

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/2389/gatekeeper/internal/provider"
	"github.com/2389/gatekeeper/internal/store"
)

// ErrInvalidCredentials is returned for both unknown usernames and wrong
// passwords so callers cannot distinguish the two.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service implements the credential-issuance core: it owns the user
// directory handle, the password hasher, and the token signer, and every
// authentication path converges on CompleteLogin.
type Service struct {
	store    store.UserStore
	hasher   *PasswordHasher
	signer   *JWTSigner
	tokenTTL time.Duration
	logger   *slog.Logger
}

// NewService creates the authentication service. tokenTTL is the configured
// session token lifetime passed to every issuance.
func NewService(userStore store.UserStore, hasher *PasswordHasher, signer *JWTSigner, tokenTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    userStore,
		hasher:   hasher,
		signer:   signer,
		tokenTTL: tokenTTL,
		logger:   logger.With("component", "auth"),
	}
}

// Register creates a new local user with a bcrypt password hash. This is the
// only path that writes a non-empty hash. Returns store.ErrUsernameExists if
// the username is taken.
func (s *Service) Register(ctx context.Context, username, password string) (*store.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &store.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("registered user", "username", username)
	return user, nil
}

// Authenticate verifies a username/password pair. Unknown users and wrong
// passwords fail identically with ErrInvalidCredentials; the unknown-user
// path burns a dummy bcrypt compare to keep timing uniform.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*store.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.hasher.VerifyDummy(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ResolveOrCreate maps a validated federated identity to an internal user,
// creating a federated-only record (empty password hash) on first sight.
// Idempotent: a second call with the same identity is a pure lookup. A
// concurrent first login loses the insert race to the unique constraint and
// falls back to reading the winner's record.
func (s *Service) ResolveOrCreate(ctx context.Context, identity provider.Identity) (*store.User, error) {
	user, err := s.store.GetUserByUsername(ctx, identity.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, fmt.Errorf("looking up identity: %w", err)
	}

	user = &store.User{
		ID:        uuid.NewString(),
		Username:  identity.Email,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			// Lost the race to a concurrent first login; use the winner.
			return s.store.GetUserByUsername(ctx, identity.Email)
		}
		return nil, fmt.Errorf("provisioning user: %w", err)
	}

	s.logger.Info("provisioned federated user", "username", user.Username)
	return user, nil
}

// CompleteLogin mints a session token for the user with the configured TTL.
// Every validated-identity path calls this, so expiry and claim logic cannot
// drift between providers. The user must already exist in the store.
func (s *Service) CompleteLogin(ctx context.Context, user *store.User) (string, error) {
	token, err := s.signer.Generate(user.Username, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return token, nil
}

// VerifyToken checks a session token and returns its subject.
func (s *Service) VerifyToken(token string) (string, error) {
	return s.signer.Verify(token)
}

// LookupUser returns the user for a username, or store.ErrUserNotFound.
func (s *Service) LookupUser(ctx context.Context, username string) (*store.User, error) {
	return s.store.GetUserByUsername(ctx, username)
}
