// ABOUTME: JWT session token issuance and verification for gatekeeper
// ABOUTME: HMAC signing with configurable algorithm and secret

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
)

// DefaultTokenTTL is used by Generate when no positive TTL is given.
const DefaultTokenTTL = 15 * time.Minute

// TokenVerifier defines the interface for session token verification.
type TokenVerifier interface {
	Verify(tokenString string) (subject string, err error)
}

// TokenIssuer defines the interface for minting session tokens.
type TokenIssuer interface {
	Generate(subject string, expiresIn time.Duration) (string, error)
}

// JWTSigner implements TokenIssuer and TokenVerifier using HMAC-signed JWTs.
// The signing algorithm is one of HS256, HS384, or HS512.
type JWTSigner struct {
	secret []byte
	method *jwt.SigningMethodHMAC
}

// NewJWTSigner creates a new signer with the given secret and algorithm.
// An empty algorithm defaults to HS256.
func NewJWTSigner(secret []byte, algorithm string) (*JWTSigner, error) {
	var method *jwt.SigningMethodHMAC
	switch algorithm {
	case "", "HS256":
		method = jwt.SigningMethodHS256
	case "HS384":
		method = jwt.SigningMethodHS384
	case "HS512":
		method = jwt.SigningMethodHS512
	default:
		return nil, fmt.Errorf("unsupported signing algorithm: %s", algorithm)
	}
	return &JWTSigner{secret: secret, method: method}, nil
}

// Verify validates the token and extracts the subject from the "sub" claim.
// Signature and expiry failures collapse into ErrInvalidToken/ErrExpiredToken;
// a missing subject yields ErrMissingClaim.
func (s *JWTSigner) Verify(tokenString string) (subject string, err error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{s.method.Alg()}))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	return sub, nil
}

// Generate creates a new session token for the given subject. A zero or
// negative expiresIn falls back to DefaultTokenTTL.
func (s *JWTSigner) Generate(subject string, expiresIn time.Duration) (string, error) {
	if expiresIn <= 0 {
		expiresIn = DefaultTokenTTL
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(expiresIn).Unix(),
	}

	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}
