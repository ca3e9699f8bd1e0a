// ABOUTME: Mock UserStore implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sync"
)

// MockStore is an in-memory UserStore implementation for testing.
type MockStore struct {
	mu    sync.RWMutex
	users map[string]*User // keyed by username
}

var _ UserStore = (*MockStore)(nil)

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users: make(map[string]*User),
	}
}

// CreateUser stores a new user. Returns ErrUsernameExists on duplicates.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[user.Username]; ok {
		return ErrUsernameExists
	}

	// Make a copy to avoid external modification
	u := *user
	m.users[user.Username] = &u
	return nil
}

// GetUserByUsername retrieves a user by username.
func (m *MockStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

// CountUsers returns the number of stored users.
func (m *MockStore) CountUsers(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

// Close is a no-op for the mock store.
func (m *MockStore) Close() error {
	return nil
}
