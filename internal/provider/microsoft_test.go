// ABOUTME: Tests for the Microsoft authorization-code exchanger
// ABOUTME: Uses local token-endpoint and Graph stubs

package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// microsoftStub stands in for the Microsoft token endpoint and the Graph
// profile endpoint.
type microsoftStub struct {
	server *httptest.Server

	validCode   string
	accessToken string
	profile     map[string]any
}

func newMicrosoftStub(t *testing.T) *microsoftStub {
	t.Helper()

	stub := &microsoftStub{
		validCode:   "good-code",
		accessToken: "graph-access-token",
		profile: map[string]any{
			"mail":              "alice@contoso.com",
			"userPrincipalName": "alice@contoso.onmicrosoft.com",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != stub.validCode {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_grant",
				"error_description": "the provided authorization code is invalid",
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": stub.accessToken,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+stub.accessToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(stub.profile)
	})

	stub.server = httptest.NewServer(mux)
	t.Cleanup(stub.server.Close)
	return stub
}

func (s *microsoftStub) exchanger(opts ...MicrosoftOption) *MicrosoftExchanger {
	cfg := MicrosoftConfig{
		ClientID:     "ms-client-id",
		ClientSecret: "ms-client-secret",
		RedirectURI:  "http://localhost:3000/callback",
		GraphURL:     s.server.URL + "/me",
	}
	opts = append([]MicrosoftOption{
		WithMicrosoftEndpoint(oauth2.Endpoint{TokenURL: s.server.URL + "/token"}),
	}, opts...)
	return NewMicrosoftExchanger(cfg, opts...)
}

func TestMicrosoftValidateSuccess(t *testing.T) {
	stub := newMicrosoftStub(t)
	e := stub.exchanger()

	identity, err := e.Validate(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "alice@contoso.com", identity.Email)
}

func TestMicrosoftValidateFallsBackToUserPrincipalName(t *testing.T) {
	stub := newMicrosoftStub(t)
	stub.profile["mail"] = nil
	e := stub.exchanger()

	identity, err := e.Validate(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "alice@contoso.onmicrosoft.com", identity.Email)
}

func TestMicrosoftValidateRejectedCode(t *testing.T) {
	stub := newMicrosoftStub(t)
	e := stub.exchanger()

	_, err := e.Validate(context.Background(), "stolen-code")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestMicrosoftValidateEmptyAccessToken(t *testing.T) {
	stub := newMicrosoftStub(t)
	stub.accessToken = ""
	e := stub.exchanger()

	// The Graph stub is never reached; an empty token is rejected outright.
	_, err := e.Validate(context.Background(), "good-code")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestMicrosoftValidateProfileWithoutEmail(t *testing.T) {
	stub := newMicrosoftStub(t)
	stub.profile = map[string]any{"displayName": "Alice"}
	e := stub.exchanger()

	_, err := e.Validate(context.Background(), "good-code")
	assert.ErrorIs(t, err, ErrMissingEmailClaim)
}

func TestMicrosoftValidateUnreachableEndpoint(t *testing.T) {
	stub := newMicrosoftStub(t)
	e := stub.exchanger()
	stub.server.Close()

	_, err := e.Validate(context.Background(), "good-code")
	assert.ErrorIs(t, err, ErrProviderUnreachable)
}

func TestMicrosoftValidateGraphRejectsToken(t *testing.T) {
	stub := newMicrosoftStub(t)

	// The exchange succeeds but the profile endpoint refuses the token.
	e := NewMicrosoftExchanger(MicrosoftConfig{
		ClientID:     "ms-client-id",
		ClientSecret: "ms-client-secret",
		GraphURL:     stub.server.URL + "/wrong-path",
	}, WithMicrosoftEndpoint(oauth2.Endpoint{TokenURL: stub.server.URL + "/token"}))

	_, err := e.Validate(context.Background(), "good-code")
	assert.ErrorIs(t, err, ErrProviderUnreachable)
}

func TestMicrosoftDefaults(t *testing.T) {
	e := NewMicrosoftExchanger(MicrosoftConfig{ClientID: "id", ClientSecret: "secret"})
	assert.Equal(t, DefaultGraphURL, e.graphURL)
	assert.Equal(t, "microsoft", e.Name())
	assert.Contains(t, e.conf.Endpoint.TokenURL, "common")
}
