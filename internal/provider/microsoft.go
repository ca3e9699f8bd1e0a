// ABOUTME: Microsoft authorization-code exchanger using OAuth2 and the Graph API
// ABOUTME: Trades a code for an access token, then reads the user profile for an email

package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

// DefaultGraphURL is the Microsoft Graph endpoint that returns the signed-in
// user's profile.
const DefaultGraphURL = "https://graph.microsoft.com/v1.0/me"

// defaultProviderTimeout bounds each outbound call to Microsoft.
const defaultProviderTimeout = 10 * time.Second

// MicrosoftConfig holds the registration details for the Microsoft app.
type MicrosoftConfig struct {
	ClientID     string
	ClientSecret string
	TenantID     string // "common" when unset
	RedirectURI  string
	GraphURL     string // DefaultGraphURL when unset
}

// MicrosoftExchanger validates Microsoft authorization codes: it exchanges
// the code at the tenant token endpoint (scope User.Read), then calls the
// Graph profile endpoint with the returned access token. The profile's
// "mail" field is used as the identity email, falling back to
// "userPrincipalName".
type MicrosoftExchanger struct {
	conf     *oauth2.Config
	graphURL string
	client   *http.Client
	timeout  time.Duration
}

// MicrosoftOption configures the exchanger.
type MicrosoftOption func(*MicrosoftExchanger)

// WithMicrosoftHTTPClient overrides the HTTP client for both outbound calls.
func WithMicrosoftHTTPClient(client *http.Client) MicrosoftOption {
	return func(e *MicrosoftExchanger) {
		e.client = client
	}
}

// WithMicrosoftEndpoint overrides the OAuth2 endpoint. Tests point it at a
// local token-endpoint stub.
func WithMicrosoftEndpoint(endpoint oauth2.Endpoint) MicrosoftOption {
	return func(e *MicrosoftExchanger) {
		e.conf.Endpoint = endpoint
	}
}

// NewMicrosoftExchanger creates an exchanger for the given app registration.
func NewMicrosoftExchanger(cfg MicrosoftConfig, opts ...MicrosoftOption) *MicrosoftExchanger {
	tenant := cfg.TenantID
	if tenant == "" {
		tenant = "common"
	}
	graphURL := cfg.GraphURL
	if graphURL == "" {
		graphURL = DefaultGraphURL
	}

	e := &MicrosoftExchanger{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"User.Read"},
			Endpoint:     microsoft.AzureADEndpoint(tenant),
		},
		graphURL: graphURL,
		client:   &http.Client{Timeout: defaultProviderTimeout},
		timeout:  defaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements Validator.
func (e *MicrosoftExchanger) Name() string { return "microsoft" }

// graphProfile is the subset of the Graph user profile the gateway reads.
type graphProfile struct {
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
}

// Validate exchanges the authorization code and resolves the user's email.
func (e *MicrosoftExchanger) Validate(ctx context.Context, code string) (Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	// Route the oauth2 exchange through our client so tests and timeouts apply.
	exchangeCtx := context.WithValue(ctx, oauth2.HTTPClient, e.client)
	tok, err := e.conf.Exchange(exchangeCtx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return Identity{}, fmt.Errorf("%w: token endpoint rejected code: %v", ErrInvalidCode, err)
		}
		return Identity{}, fmt.Errorf("%w: token exchange failed: %v", ErrProviderUnreachable, err)
	}
	if tok.AccessToken == "" {
		return Identity{}, fmt.Errorf("%w: token response missing access token", ErrInvalidCode)
	}

	profile, err := e.fetchProfile(ctx, tok.AccessToken)
	if err != nil {
		return Identity{}, err
	}

	email := profile.Mail
	if email == "" {
		email = profile.UserPrincipalName
	}
	if email == "" {
		return Identity{}, ErrMissingEmailClaim
	}

	return Identity{Email: email}, nil
}

// fetchProfile calls the Graph profile endpoint with the provider access token.
func (e *MicrosoftExchanger) fetchProfile(ctx context.Context, accessToken string) (*graphProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.graphURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: profile request failed: %v", ErrProviderUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: profile endpoint returned %d: %s", ErrProviderUnreachable, resp.StatusCode, string(body))
	}

	var profile graphProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: decoding profile: %v", ErrProviderUnreachable, err)
	}
	return &profile, nil
}
