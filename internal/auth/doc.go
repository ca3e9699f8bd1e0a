// Package auth provides credential issuance and verification for gatekeeper.
//
// # Authentication Methods
//
// Three identity-proof mechanisms converge here:
//
//   - Local passwords: bcrypt-hashed at registration, verified with a
//     timing-uniform compare (unknown users burn a dummy bcrypt round).
//
//   - Google ID tokens: validated by internal/provider against Google's
//     published keys, then resolved to a user by email.
//
//   - Microsoft authorization codes and ID tokens: exchanged or decoded by
//     internal/provider, then resolved to a user by email.
//
// # Session Tokens
//
// Whatever the proof, the Service mints one internal session token: an
// HMAC-signed JWT (HS256/HS384/HS512) carrying sub, iat, and exp. Tokens are
// stateless; validity is entirely self-contained and there is no revocation
// list.
//
//	token, err := svc.CompleteLogin(ctx, user)
//	subject, err := svc.VerifyToken(token)
//
// # Provisioning
//
// The first time a federated identity is seen, ResolveOrCreate inserts a
// user whose username is the provider-reported email and whose password
// hash is empty. An empty hash never verifies, so federated accounts can
// never pass password login. Provisioning always precedes issuance: every
// issued token's subject exists in the store at issuance time.
//
// # HTTP Middleware
//
// Middleware verifies bearer session tokens on protected endpoints and
// attaches an AuthContext retrievable with FromContext.
package auth
