// ABOUTME: Store interface and data types for gatekeeper persistence
// ABOUTME: Defines the User record and the UserStore interface for the user directory

package store

import (
	"context"
	"errors"
	"time"
)

// ErrUserNotFound is returned when a requested user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrUsernameExists is returned when trying to create a user with a username
// that is already taken.
var ErrUsernameExists = errors.New("username already exists")

// User represents an account in the user directory. For federated identities
// the username holds the email reported by the provider and PasswordHash is
// empty, which means password login is permanently disabled for that account.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash, empty for federated-only accounts
	CreatedAt    time.Time
}

// Federated reports whether the user was provisioned through a federated
// login and therefore has no local password.
func (u *User) Federated() bool {
	return u.PasswordHash == ""
}

// UserStore defines the interface for user directory persistence.
// Implementations must enforce username uniqueness; CreateUser returns
// ErrUsernameExists when the constraint is violated, which serializes
// concurrent registration of the same username.
type UserStore interface {
	// CreateUser inserts a new user. The caller sets ID and CreatedAt.
	CreateUser(ctx context.Context, user *User) error

	// GetUserByUsername returns the user with the given username,
	// or ErrUserNotFound.
	GetUserByUsername(ctx context.Context, username string) (*User, error)

	// CountUsers returns the total number of users.
	CountUsers(ctx context.Context) (int, error)

	// Close releases the underlying resources.
	Close() error
}
