// ABOUTME: Provider-agnostic identity proof validation interfaces and errors
// ABOUTME: Each federated provider normalizes its proof into an Identity

package provider

import (
	"context"
	"errors"
)

// Provider errors. The gateway maps these onto HTTP status codes; nothing
// here is retried internally.
var (
	// ErrInvalidProviderToken covers any ID-token verification failure:
	// bad signature, wrong audience or issuer, expired, malformed.
	ErrInvalidProviderToken = errors.New("invalid provider token")

	// ErrInvalidCode is returned when an authorization-code exchange is
	// rejected by the provider.
	ErrInvalidCode = errors.New("invalid authorization code")

	// ErrProviderUnreachable is returned when an outbound provider call
	// fails or times out.
	ErrProviderUnreachable = errors.New("provider unreachable")

	// ErrMissingEmailClaim is returned when the provider's response carries
	// no usable email.
	ErrMissingEmailClaim = errors.New("no email in provider response")
)

// Identity is the normalized output of any validator: the email (or
// provider-scoped principal name) that keys the internal user record.
type Identity struct {
	Email string
}

// Validator validates a raw identity proof (ID token or authorization code)
// and resolves it to an Identity. Implementations encapsulate all protocol
// details; the gateway depends only on this interface, which lets tests
// substitute fakes.
type Validator interface {
	// Name returns a stable provider identifier used for logging,
	// e.g. "google", "microsoft".
	Name() string

	// Validate checks the proof and extracts the identity.
	Validate(ctx context.Context, proof string) (Identity, error)
}
