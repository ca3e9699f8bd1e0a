// Package gateway assembles the authentication HTTP service.
//
// # Endpoints
//
//	POST /register              create a local user (JSON)
//	POST /login, POST /token    password login (form-encoded), returns bearer token
//	GET  /verify-token/{token}  check a session token
//	POST /auth/google           login with a Google ID token
//	POST /auth/microsoft        login with a Microsoft authorization code
//	POST /auth/microsoft/token  login with a Microsoft ID token (unverified demo path)
//	GET  /me                    authenticated user profile (bearer token)
//	GET  /healthz               liveness check
//
// # Serving Modes
//
// The gateway serves over a plain TCP listener, or joins a tailnet via
// tsnet when tailscale.enabled is set (plain HTTP, HTTPS with
// Tailscale-provisioned certs, or public Funnel).
//
// # Error Contract
//
// Conflicting registration is 400; bad credentials, bad provider tokens,
// and rejected authorization codes are 401; token verification failures on
// /verify-token are 403; unreachable providers surface as 400 with a
// descriptive message. Replayed Microsoft authorization codes are rejected
// locally with 401 before any provider round-trip.
package gateway
