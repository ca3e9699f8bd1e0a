// ABOUTME: HTTP API handlers for registration, login, federated auth, and token verification
// ABOUTME: Maps auth and provider errors onto the gateway's status code contract

package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2389/gatekeeper/internal/auth"
	"github.com/2389/gatekeeper/internal/provider"
	"github.com/2389/gatekeeper/internal/store"
)

// RegisterRequest is the JSON request body for POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is the JSON response for every successful login path.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// MessageResponse is the JSON response for endpoints that return a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// GoogleAuthRequest is the JSON request body for POST /auth/google.
type GoogleAuthRequest struct {
	Token string `json:"token"`
}

// MicrosoftAuthRequest is the JSON request body for POST /auth/microsoft.
type MicrosoftAuthRequest struct {
	Code string `json:"code"`
}

// MicrosoftTokenAuthRequest is the JSON request body for POST /auth/microsoft/token.
type MicrosoftTokenAuthRequest struct {
	Token string `json:"token"`
}

// MeResponse is the JSON response for GET /me.
type MeResponse struct {
	Username  string `json:"username"`
	Federated bool   `json:"federated"`
	CreatedAt string `json:"created_at"`
}

// registerRoutes attaches all API routes to the mux.
func (g *Gateway) registerRoutes(mux *http.ServeMux, verifier auth.TokenVerifier) {
	mux.HandleFunc("POST /register", g.handleRegister)
	mux.HandleFunc("POST /login", g.handleLogin)
	// FastAPI-style alias used by OAuth2 password clients
	mux.HandleFunc("POST /token", g.handleLogin)
	mux.HandleFunc("GET /verify-token/{token}", g.handleVerifyToken)
	mux.HandleFunc("POST /auth/google", g.handleGoogleAuth)
	mux.HandleFunc("POST /auth/microsoft", g.handleMicrosoftAuth)
	mux.HandleFunc("POST /auth/microsoft/token", g.handleMicrosoftTokenAuth)
	mux.HandleFunc("GET /healthz", g.handleHealth)

	requireAuth := auth.Middleware(g.store, verifier)
	mux.Handle("GET /me", requireAuth(http.HandlerFunc(g.handleMe)))
}

// handleRegister creates a new local user.
func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		g.sendJSONError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	if _, err := g.authSvc.Register(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			g.sendJSONError(w, http.StatusBadRequest, "User already registered")
			return
		}
		g.logger.Error("registration failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	g.writeJSON(w, http.StatusCreated, MessageResponse{Message: "User registered successfully"})
}

// handleLogin authenticates a username/password form and issues a session
// token. Serves both /login and the /token alias; the body is form-encoded
// to match OAuth2 password-grant clients.
func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	user, err := g.authSvc.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			g.sendJSONError(w, http.StatusUnauthorized, "Incorrect username or password")
			return
		}
		g.logger.Error("login failed", "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	g.completeLogin(w, r, user)
}

// handleVerifyToken checks a session token passed as a path parameter.
func (g *Gateway) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	if _, err := g.authSvc.VerifyToken(token); err != nil {
		g.sendJSONError(w, http.StatusForbidden, "Token is invalid or expired")
		return
	}

	g.writeJSON(w, http.StatusOK, MessageResponse{Message: "Token is valid"})
}

// handleGoogleAuth validates a Google ID token and logs the identity in.
func (g *Gateway) handleGoogleAuth(w http.ResponseWriter, r *http.Request) {
	var req GoogleAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	g.handleFederated(w, r, g.google, req.Token)
}

// handleMicrosoftAuth exchanges a Microsoft authorization code and logs the
// identity in. Replayed codes are rejected before any provider round-trip.
func (g *Gateway) handleMicrosoftAuth(w http.ResponseWriter, r *http.Request) {
	var req MicrosoftAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Code == "" {
		g.sendJSONError(w, http.StatusBadRequest, "code is required")
		return
	}

	if g.replayed.Seen(req.Code) {
		g.logger.Warn("rejected replayed authorization code", "provider", g.msCode.Name())
		g.sendJSONError(w, http.StatusUnauthorized, "authorization code already used")
		return
	}

	g.handleFederated(w, r, g.msCode, req.Code)
}

// handleMicrosoftTokenAuth logs in from a Microsoft ID token WITHOUT
// verifying its signature. Demo path; see provider.MicrosoftTokenDecoder.
func (g *Gateway) handleMicrosoftTokenAuth(w http.ResponseWriter, r *http.Request) {
	var req MicrosoftTokenAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	g.handleFederated(w, r, g.msToken, req.Token)
}

// handleFederated is the shared federated path: validate the proof, resolve
// or provision the user, then mint the session token. Every provider funnels
// through here so expiry and claim logic cannot drift.
func (g *Gateway) handleFederated(w http.ResponseWriter, r *http.Request, validator provider.Validator, proof string) {
	identity, err := validator.Validate(r.Context(), proof)
	if err != nil {
		g.writeProviderError(w, validator.Name(), err)
		return
	}

	user, err := g.authSvc.ResolveOrCreate(r.Context(), identity)
	if err != nil {
		g.logger.Error("provisioning failed", "provider", validator.Name(), "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	g.completeLogin(w, r, user)
}

// completeLogin mints the session token and writes the bearer response.
func (g *Gateway) completeLogin(w http.ResponseWriter, r *http.Request, user *store.User) {
	token, err := g.authSvc.CompleteLogin(r.Context(), user)
	if err != nil {
		g.logger.Error("token issuance failed", "username", user.Username, "error", err)
		g.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	g.writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// writeProviderError maps provider errors onto the status code contract.
func (g *Gateway) writeProviderError(w http.ResponseWriter, providerName string, err error) {
	g.logger.Warn("provider validation failed", "provider", providerName, "error", err)

	switch {
	case errors.Is(err, provider.ErrMissingEmailClaim):
		g.sendJSONError(w, http.StatusBadRequest, "no email found in provider response")
	case errors.Is(err, provider.ErrInvalidCode):
		g.sendJSONError(w, http.StatusUnauthorized, "authorization code rejected")
	case errors.Is(err, provider.ErrProviderUnreachable):
		g.sendJSONError(w, http.StatusBadRequest, "provider authentication failed")
	default:
		g.sendJSONError(w, http.StatusUnauthorized, "invalid provider token")
	}
}

// handleMe returns the authenticated user's profile.
func (g *Gateway) handleMe(w http.ResponseWriter, r *http.Request) {
	authCtx := auth.FromContext(r.Context())
	if authCtx == nil {
		g.sendJSONError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := g.authSvc.LookupUser(r.Context(), authCtx.Username)
	if err != nil {
		g.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	g.writeJSON(w, http.StatusOK, MeResponse{
		Username:  user.Username,
		Federated: user.Federated(),
		CreatedAt: user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	g.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func (g *Gateway) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		g.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
