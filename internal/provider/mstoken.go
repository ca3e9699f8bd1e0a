// ABOUTME: Microsoft ID-token decoder that does NOT verify the signature
// ABOUTME: Demo-only path, must never guard anything trust-sensitive

package provider

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// MicrosoftTokenDecoder extracts the identity from a Microsoft ID token by
// decoding its claims WITHOUT verifying the cryptographic signature.
//
// SECURITY: anyone who can craft a well-formed JWT payload can impersonate
// any identity through this path. It exists to mirror the demo token flow
// and is deliberately kept out of the bearer-middleware trust chain; route
// it through full JWKS verification before any production use.
type MicrosoftTokenDecoder struct{}

// NewMicrosoftTokenDecoder creates the unverified decoder.
func NewMicrosoftTokenDecoder() *MicrosoftTokenDecoder {
	return &MicrosoftTokenDecoder{}
}

// Name implements Validator.
func (d *MicrosoftTokenDecoder) Name() string { return "microsoft-token" }

// Validate decodes the token claims without signature verification and
// extracts "email", falling back to "preferred_username".
func (d *MicrosoftTokenDecoder) Validate(ctx context.Context, rawToken string) (Identity, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(rawToken, claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidProviderToken, err)
	}

	email, _ := claims["email"].(string)
	if email == "" {
		email, _ = claims["preferred_username"].(string)
	}
	if email == "" {
		return Identity{}, ErrMissingEmailClaim
	}

	return Identity{Email: email}, nil
}
