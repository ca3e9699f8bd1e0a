// ABOUTME: Tests for the unverified Microsoft ID-token decoder
// ABOUTME: Confirms claims are read without the signature being checked

package provider

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signWithThrowawayKey builds a structurally valid token whose signature the
// decoder never checks.
func signWithThrowawayKey(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("throwaway"))
	require.NoError(t, err)
	return token
}

func TestMicrosoftTokenDecoderEmailClaim(t *testing.T) {
	d := NewMicrosoftTokenDecoder()

	token := signWithThrowawayKey(t, jwt.MapClaims{"email": "alice@contoso.com"})
	identity, err := d.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice@contoso.com", identity.Email)
}

func TestMicrosoftTokenDecoderPreferredUsernameFallback(t *testing.T) {
	d := NewMicrosoftTokenDecoder()

	token := signWithThrowawayKey(t, jwt.MapClaims{"preferred_username": "alice@contoso.onmicrosoft.com"})
	identity, err := d.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice@contoso.onmicrosoft.com", identity.Email)
}

func TestMicrosoftTokenDecoderMissingIdentityClaims(t *testing.T) {
	d := NewMicrosoftTokenDecoder()

	token := signWithThrowawayKey(t, jwt.MapClaims{"sub": "1234"})
	_, err := d.Validate(context.Background(), token)
	assert.ErrorIs(t, err, ErrMissingEmailClaim)
}

func TestMicrosoftTokenDecoderMalformedToken(t *testing.T) {
	d := NewMicrosoftTokenDecoder()

	for _, input := range []string{"", "not-a-token", "a.b"} {
		_, err := d.Validate(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidProviderToken, "input %q", input)
	}
}

func TestMicrosoftTokenDecoderName(t *testing.T) {
	assert.Equal(t, "microsoft-token", NewMicrosoftTokenDecoder().Name())
}
