package token

import (
	"slices"
	"time"
)

// Claims is the decoded, signature-checked content of a token. It is
// rebuilt on every verification and never stored.
type Claims struct {
	Subject   string
	Issuer    string
	ID        string
	IssuedAt  time.Time
	NotBefore time.Time
	ExpiresAt time.Time
}

// Reason explains an authentication failure. It is for server-side logs
// only.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonMissing         Reason = "missing"
	ReasonMalformed       Reason = "malformed"
	ReasonNotYetValid     Reason = "not_yet_valid"
	ReasonExpired         Reason = "expired"
	ReasonUntrustedIssuer Reason = "untrusted_issuer"
)

// Evaluate applies the temporal and issuer rules to claims and reports the
// first rule that fails. Comparison is done in whole Unix seconds, the
// resolution of the wire format, and both bounds are inclusive.
func Evaluate(claims *Claims, now time.Time, allowedIssuers []string) Reason {
	if claims == nil {
		return ReasonMalformed
	}

	current := now.Unix()
	if current < claims.NotBefore.Unix() {
		return ReasonNotYetValid
	}
	if current > claims.ExpiresAt.Unix() {
		return ReasonExpired
	}
	if !slices.Contains(allowedIssuers, claims.Issuer) {
		return ReasonUntrustedIssuer
	}
	return ReasonNone
}

// IsValid reports whether nbf <= now <= exp and the issuer is allowed.
func IsValid(claims *Claims, now time.Time, allowedIssuers []string) bool {
	return Evaluate(claims, now, allowedIssuers) == ReasonNone
}
