// ABOUTME: Cached JWKS key set for verifying provider-signed ID tokens
// ABOUTME: Fetches RSA public keys by kid and refreshes on miss or staleness

package provider

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"
)

// keySet caches a provider's published JWKS keys. Keys rotate server-side,
// so the cache refreshes when stale or when an unknown kid is requested.
type keySet struct {
	jwksURL string
	client  *http.Client
	ttl     time.Duration

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func newKeySet(jwksURL string, client *http.Client, ttl time.Duration) *keySet {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &keySet{
		jwksURL: jwksURL,
		client:  client,
		ttl:     ttl,
	}
}

// jwk is a JSON Web Key as published in a JWKS document. Only RSA signing
// keys are used; Google signs ID tokens with RS256.
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

type jwksDoc struct {
	Keys []jwk `json:"keys"`
}

// Key returns the RSA public key for kid, refreshing the JWKS once if the
// cache is stale or the kid is unknown.
func (k *keySet) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	k.mu.RLock()
	key, ok := k.keys[kid]
	stale := k.keys == nil || time.Since(k.fetchedAt) > k.ttl
	k.mu.RUnlock()

	if ok && !stale {
		return key, nil
	}

	if err := k.refresh(ctx); err != nil {
		return nil, err
	}

	k.mu.RLock()
	defer k.mu.RUnlock()
	key, ok = k.keys[kid]
	if !ok {
		return nil, fmt.Errorf("key %q not found in JWKS", kid)
	}
	return key, nil
}

func (k *keySet) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.jwksURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating JWKS request: %w", err)
	}

	resp, err := k.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("JWKS endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var doc jwksDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("decoding JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, jk := range doc.Keys {
		if jk.Kty != "RSA" {
			continue
		}
		if jk.Use != "" && jk.Use != "sig" {
			continue
		}
		pub, err := jk.rsaPublicKey()
		if err != nil {
			return fmt.Errorf("parsing JWK %q: %w", jk.Kid, err)
		}
		keys[jk.Kid] = pub
	}
	if len(keys) == 0 {
		return errors.New("JWKS document contains no usable RSA keys")
	}

	k.mu.Lock()
	k.keys = keys
	k.fetchedAt = time.Now()
	k.mu.Unlock()

	return nil
}

func (j *jwk) rsaPublicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(j.N)
	if err != nil {
		return nil, fmt.Errorf("decoding modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(j.E)
	if err != nil {
		return nil, fmt.Errorf("decoding exponent: %w", err)
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}
