// Package token implements the stateless RS256 authentication scheme shared
// by every coordinator service.
//
// The auth service holds the RSA private key and mints tokens with an
// [Issuer]. Every other service holds only the public key and runs the
// same two steps on each request:
//
//   - [Verifier.Verify] checks structure, algorithm and signature and
//     decodes the claims. It says nothing about whether the claims are
//     currently acceptable.
//   - [IsValid] applies the business rules: nbf <= now <= exp and the
//     issuer belongs to the service's allow-list.
//
// [Authenticator] composes both with an injected clock. Its [Result]
// carries an internal [Reason] for audit logging; callers must answer
// every failure the same way.
//
// Tokens are never persisted and cannot be revoked; they stay valid until
// their natural expiry.
package token
