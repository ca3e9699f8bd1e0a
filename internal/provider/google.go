// ABOUTME: Google ID token validator using Google's published JWKS keys
// ABOUTME: Checks signature, issuer, audience, and expiry, then extracts the email claim

package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// Google issues ID tokens under either issuer value.
var googleIssuers = []string{"accounts.google.com", "https://accounts.google.com"}

// GoogleValidator validates Google-issued ID tokens against Google's current
// public key set. Key rotation is handled by the cached keySet; no keys are
// hardcoded.
type GoogleValidator struct {
	clientID string
	keys     *keySet
}

// GoogleOption configures the validator.
type GoogleOption func(*GoogleValidator)

// WithGoogleHTTPClient overrides the HTTP client used for JWKS fetches.
// Tests point it at a local JWKS stub.
func WithGoogleHTTPClient(client *http.Client) GoogleOption {
	return func(v *GoogleValidator) {
		v.keys.client = client
	}
}

// WithGoogleJWKSURL overrides the JWKS endpoint. Tests only.
func WithGoogleJWKSURL(url string) GoogleOption {
	return func(v *GoogleValidator) {
		v.keys.jwksURL = url
	}
}

// NewGoogleValidator creates a validator expecting tokens whose audience is
// the given OAuth client ID.
func NewGoogleValidator(clientID string, opts ...GoogleOption) *GoogleValidator {
	v := &GoogleValidator{
		clientID: clientID,
		keys:     newKeySet(googleJWKSURL, nil, time.Hour),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Name implements Validator.
func (v *GoogleValidator) Name() string { return "google" }

// Validate verifies the raw ID token and extracts its email claim. Every
// verification failure collapses into ErrInvalidProviderToken so callers
// surface one uniform 401.
func (v *GoogleValidator) Validate(ctx context.Context, rawToken string) (Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(rawToken, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header missing kid")
		}
		return v.keys.Key(ctx, kid)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidProviderToken, err)
	}

	iss, err := claims.GetIssuer()
	if err != nil || !isGoogleIssuer(iss) {
		return Identity{}, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidProviderToken, iss)
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return Identity{}, ErrMissingEmailClaim
	}

	return Identity{Email: email}, nil
}

func isGoogleIssuer(iss string) bool {
	for _, want := range googleIssuers {
		if iss == want {
			return true
		}
	}
	return false
}
