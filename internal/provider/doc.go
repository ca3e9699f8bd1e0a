// Package provider validates federated identity proofs and normalizes them
// into a single Identity shape keyed by email.
//
// # Validators
//
//   - GoogleValidator: verifies Google ID tokens against Google's published
//     JWKS keys (cached, rotation-aware) and checks issuer, audience, and
//     expiry before accepting the email claim.
//
//   - MicrosoftExchanger: exchanges an authorization code at the tenant's
//     token endpoint, then reads the Graph profile for the email
//     (mail, falling back to userPrincipalName).
//
//   - MicrosoftTokenDecoder: decodes an ID token's claims WITHOUT signature
//     verification. Demo path only; see the warning on the type.
//
// All validators implement the Validator interface so the gateway and its
// tests can substitute fakes.
//
// # Errors
//
// Failures collapse into a small sentinel set: ErrInvalidProviderToken,
// ErrInvalidCode, ErrProviderUnreachable, ErrMissingEmailClaim. Outbound
// HTTP failures are wrapped with a descriptive message, never propagated raw.
package provider
