// ABOUTME: Tests for the Google ID token validator
// ABOUTME: Uses a local JWKS stub and RSA-signed test tokens

package provider

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientID = "test-client-id.apps.googleusercontent.com"

// testKeyServer generates an RSA key pair and serves its public half as a
// JWKS document, the way Google publishes signing keys.
type testKeyServer struct {
	key    *rsa.PrivateKey
	kid    string
	server *httptest.Server
}

func newTestKeyServer(t *testing.T) *testKeyServer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	ks := &testKeyServer{key: key, kid: "test-key-1"}
	ks.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc := map[string]any{
			"keys": []map[string]string{
				{
					"kty": "RSA",
					"kid": ks.kid,
					"use": "sig",
					"alg": "RS256",
					"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
					"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(ks.server.Close)
	return ks
}

// sign mints an RS256 token carrying the given claims under the server's kid.
func (ks *testKeyServer) sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = ks.kid
	signed, err := token.SignedString(ks.key)
	require.NoError(t, err)
	return signed
}

func googleClaims(overrides jwt.MapClaims) jwt.MapClaims {
	claims := jwt.MapClaims{
		"iss":   "https://accounts.google.com",
		"aud":   testClientID,
		"sub":   "1234567890",
		"email": "alice@example.com",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	for k, v := range overrides {
		if v == nil {
			delete(claims, k)
			continue
		}
		claims[k] = v
	}
	return claims
}

func newTestGoogleValidator(ks *testKeyServer) *GoogleValidator {
	return NewGoogleValidator(testClientID, WithGoogleJWKSURL(ks.server.URL))
}

func TestGoogleValidateAcceptsValidToken(t *testing.T) {
	ks := newTestKeyServer(t)
	v := newTestGoogleValidator(ks)

	token := ks.sign(t, googleClaims(nil))
	identity, err := v.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", identity.Email)
}

func TestGoogleValidateAcceptsBareIssuer(t *testing.T) {
	ks := newTestKeyServer(t)
	v := newTestGoogleValidator(ks)

	token := ks.sign(t, googleClaims(jwt.MapClaims{"iss": "accounts.google.com"}))
	identity, err := v.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", identity.Email)
}

func TestGoogleValidateRejectsWrongAudience(t *testing.T) {
	ks := newTestKeyServer(t)
	v := newTestGoogleValidator(ks)

	token := ks.sign(t, googleClaims(jwt.MapClaims{"aud": "some-other-client"}))
	_, err := v.Validate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidProviderToken)
}

func TestGoogleValidateRejectsWrongIssuer(t *testing.T) {
	ks := newTestKeyServer(t)
	v := newTestGoogleValidator(ks)

	token := ks.sign(t, googleClaims(jwt.MapClaims{"iss": "https://evil.example.com"}))
	_, err := v.Validate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidProviderToken)
}

func TestGoogleValidateRejectsExpiredToken(t *testing.T) {
	ks := newTestKeyServer(t)
	v := newTestGoogleValidator(ks)

	token := ks.sign(t, googleClaims(jwt.MapClaims{
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}))
	_, err := v.Validate(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidProviderToken)
}

func TestGoogleValidateRejectsUnknownKey(t *testing.T) {
	ks := newTestKeyServer(t)
	v := newTestGoogleValidator(ks)

	// Sign with a key the JWKS server does not publish.
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, googleClaims(nil))
	token.Header["kid"] = "unknown-key"
	signed, err := token.SignedString(otherKey)
	require.NoError(t, err)

	_, err = v.Validate(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidProviderToken)
}

func TestGoogleValidateRejectsHMACToken(t *testing.T) {
	ks := newTestKeyServer(t)
	v := newTestGoogleValidator(ks)

	// An attacker must not be able to downgrade to a symmetric algorithm.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, googleClaims(nil))
	token.Header["kid"] = ks.kid
	signed, err := token.SignedString([]byte("guessable"))
	require.NoError(t, err)

	_, err = v.Validate(context.Background(), signed)
	assert.ErrorIs(t, err, ErrInvalidProviderToken)
}

func TestGoogleValidateMissingEmail(t *testing.T) {
	ks := newTestKeyServer(t)
	v := newTestGoogleValidator(ks)

	token := ks.sign(t, googleClaims(jwt.MapClaims{"email": nil}))
	_, err := v.Validate(context.Background(), token)
	assert.ErrorIs(t, err, ErrMissingEmailClaim)
}

func TestGoogleValidateGarbageToken(t *testing.T) {
	ks := newTestKeyServer(t)
	v := newTestGoogleValidator(ks)

	_, err := v.Validate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidProviderToken)
}

func TestGoogleValidatorName(t *testing.T) {
	assert.Equal(t, "google", NewGoogleValidator(testClientID).Name())
}

func TestKeySetRefreshesOnUnknownKid(t *testing.T) {
	// On rotation the validator should re-fetch the JWKS rather than fail
	// against the cached keys.
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	fetches := 0
	kid := "rotated-old"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches++
		doc := map[string]any{
			"keys": []map[string]string{
				{
					"kty": "RSA",
					"kid": kid,
					"use": "sig",
					"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
					"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
				},
			},
		}
		json.NewEncoder(w).Encode(doc)
	}))
	defer server.Close()

	ks := newKeySet(server.URL, nil, time.Hour)

	_, err = ks.Key(context.Background(), "rotated-old")
	require.NoError(t, err)
	require.Equal(t, 1, fetches)

	// Rotate server-side; the unknown kid triggers one refresh.
	kid = "rotated-new"
	_, err = ks.Key(context.Background(), "rotated-new")
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)

	// Known kid within TTL is served from cache.
	_, err = ks.Key(context.Background(), "rotated-new")
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
}
