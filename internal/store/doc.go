// Package store provides persistent storage for the gatekeeper user
// directory using SQLite.
//
// # Architecture
//
// The package exposes a single UserStore interface with two implementations:
//
//   - SQLiteStore: production storage backed by modernc.org/sqlite
//   - MockStore: in-memory implementation for unit tests
//
// # Data Model
//
//   - User: an account keyed by unique username. Federated accounts carry
//     the provider-reported email as the username and an empty password
//     hash, which excludes them from password login.
//
// # SQLite Configuration
//
// The store uses SQLite with WAL mode for concurrent reads:
//
//	PRAGMA journal_mode=WAL;
//	PRAGMA foreign_keys=ON;
//
// # Error Handling
//
//   - ErrUserNotFound: requested user does not exist
//   - ErrUsernameExists: unique constraint violation on insert
//
// All methods accept context.Context for cancellation support. The unique
// constraint on username is what serializes concurrent registration and
// concurrent first-login provisioning of the same identity.
package store
